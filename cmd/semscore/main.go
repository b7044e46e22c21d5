// Package main provides the semscore binary entry point.
// Semscore is a dataset quality scoring service built on semstreams:
// it scores DCAT/DQV assessment graphs and serves the results over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	// Register vocabularies via init()
	_ "github.com/c360studio/semscore/vocabulary/dcat"
	_ "github.com/c360studio/semscore/vocabulary/dqv"
	_ "github.com/c360studio/semscore/vocabulary/mqa"

	semscoreconfig "github.com/c360studio/semscore/config"
	assessmentingester "github.com/c360studio/semscore/processor/assessment-ingester"
	scoreapi "github.com/c360studio/semscore/processor/score-api"
	filesource "github.com/c360studio/semscore/source/file"
	"github.com/c360studio/semscore/storage"
	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/componentregistry"
	"github.com/c360studio/semstreams/config"
	"github.com/c360studio/semstreams/metric"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/c360studio/semstreams/service"
	"github.com/c360studio/semstreams/types"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semscore"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "semscore",
		Short: "Dataset quality scoring service",
		Long: `Semscore scores DCAT dataset quality assessments expressed with the
W3C Data Quality Vocabulary (DQV).

It provides:
- JetStream ingestion of assessment graphs with persisted score trees
- HTTP endpoints for scores, assessment graphs, and cross-dataset aggregates
- An optional drop directory for assessment backfill and replay

All components communicate via NATS using the semstreams framework.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, logLevel)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func run(configPath, logLevel string) error {
	// Print banner
	printBanner()

	// Configure logging
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load configuration (defaults, files, environment overrides)
	cfg, err := semscoreconfig.NewLoader(logger).Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	// Open the assessment database and install it as the global store so
	// components can reach it without wiring
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	storage.InitGlobal(store)

	// Connect to NATS
	natsClient, err := connectToNATS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(ctx)

	// Build the platform config driving streams, services, and components
	platformCfg := buildPlatformConfig(cfg)

	// Ensure JetStream streams exist
	if err := ensureStreams(ctx, platformCfg, natsClient, logger); err != nil {
		return err
	}

	slog.Info("Semscore ready",
		"version", Version,
		"database", cfg.Postgres.DBName,
		"nats_url", cfg.NATS.URL)

	// Create remaining infrastructure
	metricsRegistry := metric.NewMetricsRegistry()
	platform := extractPlatformMeta(platformCfg)

	// Create and start config manager (required for component-manager to access component configs)
	configManager, err := config.NewConfigManager(platformCfg, natsClient, logger)
	if err != nil {
		return fmt.Errorf("create config manager: %w", err)
	}
	if err := configManager.Start(ctx); err != nil {
		return fmt.Errorf("start config manager: %w", err)
	}
	defer configManager.Stop(5 * time.Second)

	slog.Info("Platform identity configured",
		"org", platform.Org,
		"platform", platform.Platform)

	// Create and populate component registry
	componentRegistry := component.NewRegistry()

	// Register all semstreams components
	slog.Debug("Registering semstreams component factories")
	if err := componentregistry.Register(componentRegistry); err != nil {
		return fmt.Errorf("register semstreams components: %w", err)
	}

	// Register semscore-specific components
	slog.Debug("Registering semscore component factories")
	if err := assessmentingester.Register(componentRegistry); err != nil {
		return fmt.Errorf("register assessment-ingester: %w", err)
	}

	if err := scoreapi.Register(componentRegistry); err != nil {
		return fmt.Errorf("register score-api: %w", err)
	}

	if err := filesource.Register(componentRegistry); err != nil {
		return fmt.Errorf("register file-source: %w", err)
	}

	factories := componentRegistry.ListFactories()
	slog.Info("Component factories registered", "count", len(factories))

	// Create service registry and manager (semstreams pattern)
	serviceRegistry := service.NewServiceRegistry()
	if err := service.RegisterAll(serviceRegistry); err != nil {
		return fmt.Errorf("register services: %w", err)
	}

	manager := service.NewServiceManager(serviceRegistry)
	ensureServiceManagerConfig(platformCfg)

	// Create service dependencies
	svcDeps := &service.Dependencies{
		NATSClient:        natsClient,
		MetricsRegistry:   metricsRegistry,
		Logger:            logger,
		Platform:          platform,
		Manager:           configManager,
		ComponentRegistry: componentRegistry,
	}

	// Configure and create services
	if err := configureAndCreateServices(platformCfg, manager, svcDeps); err != nil {
		return err
	}

	slog.Info("All services configured")

	// Setup signal handling
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	// Start all services (includes HTTP server with health endpoints)
	slog.Info("Starting all services")
	if err := manager.StartAll(signalCtx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	slog.Info("All services started successfully")

	// Block until shutdown signal
	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	// Stop all services
	shutdownTimeout := 30 * time.Second
	if err := manager.StopAll(shutdownTimeout); err != nil {
		slog.Error("Error stopping services", "error", err)
	}

	slog.Info("Semscore shutdown complete")
	return nil
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║            Semscore v" + Version + "                    ║")
	fmt.Println("║       Dataset Quality Scoring Service         ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
}

// openStore connects the Postgres assessment store, creating the schema on
// first run.
func openStore(ctx context.Context, cfg *semscoreconfig.Config, logger *slog.Logger) (*storage.PostgresStore, error) {
	logger.Info("Connecting to Postgres",
		"host", cfg.Postgres.Host,
		"port", cfg.Postgres.Port,
		"database", cfg.Postgres.DBName)

	store, err := storage.NewPostgresStore(ctx, storage.PostgresConfig{
		Host:         cfg.Postgres.Host,
		Port:         cfg.Postgres.Port,
		User:         cfg.Postgres.Username,
		Password:     cfg.Postgres.Password,
		DBName:       cfg.Postgres.DBName,
		SSLMode:      cfg.Postgres.SSLMode,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
	})
	if err != nil {
		return nil, wrapPostgresError(err, cfg.Postgres.Host, cfg.Postgres.Port)
	}

	logger.Info("Connected to Postgres", "database", cfg.Postgres.DBName)
	return store, nil
}

// wrapPostgresError provides helpful guidance when the database is unreachable.
func wrapPostgresError(err error, host string, port int) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`postgres connection failed: %w

Postgres is not reachable at %s:%d.

To start Postgres:
  docker compose up -d postgres

Or set POSTGRES_HOST / POSTGRES_PORT environment variables to point to your database.`, err, host, port)
	}

	return fmt.Errorf("postgres connection failed: %w", err)
}

func connectToNATS(ctx context.Context, cfg *semscoreconfig.Config, logger *slog.Logger) (*natsclient.Client, error) {
	natsURL := cfg.NATS.URL

	logger.Info("Connecting to NATS", "url", natsURL)

	client, err := natsclient.NewClient(natsURL,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20), // Higher threshold for startup bursts
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	logger.Info("Connected to NATS", "url", natsURL)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	// Check for common connection errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker compose up -d nats

Or set NATS_URL environment variable to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}

// buildPlatformConfig translates the semscore service config into the
// semstreams platform config that drives streams, services, and components.
func buildPlatformConfig(cfg *semscoreconfig.Config) *config.Config {
	ingesterConfig := map[string]any{
		"stream_name":    cfg.Ingester.Stream,
		"consumer_name":  cfg.Ingester.Consumer,
		"subject_filter": cfg.Ingester.Subject,
		"ack_wait":       cfg.Ingester.AckWait,
	}
	ingesterJSON, _ := json.Marshal(ingesterConfig)

	apiConfig := map[string]any{
		"prefix":    cfg.API.Prefix,
		"api_key":   cfg.API.APIKey,
		"cache_ttl": cfg.API.CacheTTL,
	}
	apiJSON, _ := json.Marshal(apiConfig)

	components := config.ComponentConfigs{
		"assessment-ingester": types.ComponentConfig{
			Name:    "assessment-ingester",
			Type:    types.ComponentTypeProcessor,
			Enabled: true,
			Config:  ingesterJSON,
		},
		"score-api": types.ComponentConfig{
			Name:    "score-api",
			Type:    types.ComponentTypeProcessor,
			Enabled: true,
			Config:  apiJSON,
		},
	}

	if cfg.Source.Enabled {
		sourceConfig := map[string]any{
			"drop_dir":       cfg.Source.DropDir,
			"patterns":       cfg.Source.Patterns,
			"debounce_delay": cfg.Source.Debounce,
			"subject":        cfg.Ingester.Subject,
		}
		sourceJSON, _ := json.Marshal(sourceConfig)
		components["file-source"] = types.ComponentConfig{
			Name:    "file-source",
			Type:    types.ComponentTypeProcessor,
			Enabled: true,
			Config:  sourceJSON,
		}
	}

	// Component-manager instantiates the enabled components above
	componentManagerJSON, _ := json.Marshal(map[string]any{})

	return &config.Config{
		Version: "1.0.0",
		Platform: config.PlatformConfig{
			Org:         appName,
			ID:          "semscore-local",
			Environment: "dev",
		},
		NATS: config.NATSConfig{
			URLs:          []string{cfg.NATS.URL},
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			JetStream: config.JetStreamConfig{
				Enabled: true,
			},
		},
		Services: types.ServiceConfigs{
			"component-manager": types.ServiceConfig{
				Name:    "component-manager",
				Enabled: true,
				Config:  componentManagerJSON,
			},
		},
		Components: components,
		Streams: config.StreamConfigs{
			cfg.Ingester.Stream: config.StreamConfig{
				Subjects: []string{
					"quality.>",
				},
				MaxAge:   "24h",
				Storage:  "file",
				Replicas: 1,
			},
		},
	}
}

func ensureStreams(ctx context.Context, cfg *config.Config, natsClient *natsclient.Client, logger *slog.Logger) error {
	logger.Debug("Creating JetStream streams")
	streamsManager := config.NewStreamsManager(natsClient, logger)

	if err := streamsManager.EnsureStreams(ctx, cfg); err != nil {
		return fmt.Errorf("ensure streams: %w", err)
	}

	logger.Debug("JetStream streams ready")
	return nil
}

func extractPlatformMeta(cfg *config.Config) types.PlatformMeta {
	platformID := cfg.Platform.InstanceID
	if platformID == "" {
		platformID = cfg.Platform.ID
	}

	return types.PlatformMeta{
		Org:      cfg.Platform.Org,
		Platform: platformID,
	}
}

// ensureServiceManagerConfig ensures service-manager config exists with defaults
func ensureServiceManagerConfig(cfg *config.Config) {
	if cfg.Services == nil {
		cfg.Services = make(types.ServiceConfigs)
	}

	if _, exists := cfg.Services["service-manager"]; !exists {
		slog.Debug("Adding default service-manager config")
		defaultConfig := map[string]any{
			"http_port":  8080,
			"swagger_ui": false,
			"server_info": map[string]string{
				"title":       "Semscore API",
				"description": "dataset quality scoring - DQV score trees and dimension aggregates",
				"version":     Version,
			},
		}
		defaultConfigJSON, _ := json.Marshal(defaultConfig)
		cfg.Services["service-manager"] = types.ServiceConfig{
			Name:    "service-manager",
			Enabled: true,
			Config:  defaultConfigJSON,
		}
		slog.Debug("Service-manager config added", "enabled", true)
	}
}

// configureAndCreateServices configures the manager and creates all services
func configureAndCreateServices(
	cfg *config.Config,
	manager *service.Manager,
	svcDeps *service.Dependencies,
) error {
	slog.Debug("Configuring Manager")
	if err := manager.ConfigureFromServices(cfg.Services, svcDeps); err != nil {
		return fmt.Errorf("configure service manager: %w", err)
	}

	slog.Debug("Creating services from config", "count", len(cfg.Services))
	for name, svcConfig := range cfg.Services {
		if name == "service-manager" {
			slog.Debug("Skipping service-manager (configured directly)")
			continue
		}

		if err := createServiceIfEnabled(manager, name, svcConfig, svcDeps); err != nil {
			return err
		}
	}

	return nil
}

// createServiceIfEnabled creates a service if it's enabled and registered
func createServiceIfEnabled(
	manager *service.Manager,
	name string,
	svcConfig types.ServiceConfig,
	svcDeps *service.Dependencies,
) error {
	slog.Debug("Processing service config", "key", name, "name", svcConfig.Name, "enabled", svcConfig.Enabled)

	if !svcConfig.Enabled {
		slog.Info("Service disabled in config", "name", name)
		return nil
	}

	if !manager.HasConstructor(name) {
		slog.Warn("Service configured but not registered", "key", name, "available_constructors", manager.ListConstructors())
		return nil
	}

	slog.Debug("Creating service", "name", name, "has_constructor", true)
	if _, err := manager.CreateService(name, svcConfig.Config, svcDeps); err != nil {
		return fmt.Errorf("create service %s: %w", name, err)
	}

	slog.Info("Created service", "name", name, "config_name", svcConfig.Name)
	return nil
}
