package filesource

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
)

func TestNewComponent(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		raw := json.RawMessage(`{"drop_dir": "/var/lib/semscore/drop"}`)
		comp, err := NewComponent(raw, component.Dependencies{Logger: slog.Default()})
		if err != nil {
			t.Fatalf("NewComponent failed: %v", err)
		}

		c := comp.(*Component)
		if c.config.DropDir != "/var/lib/semscore/drop" {
			t.Errorf("unexpected drop dir: %s", c.config.DropDir)
		}
		if len(c.config.Patterns) != 1 || c.config.Patterns[0] != "**/*.json" {
			t.Errorf("unexpected default patterns: %v", c.config.Patterns)
		}
		if c.config.DebounceDelay != "500ms" {
			t.Errorf("unexpected default debounce: %s", c.config.DebounceDelay)
		}
		if c.config.Subject != "quality.assessment.received" {
			t.Errorf("unexpected default subject: %s", c.config.Subject)
		}
		if c.config.Ports == nil {
			t.Error("expected default ports to be set")
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		raw := json.RawMessage(`{"drop_dir": "/tmp/drop", "patterns": ["incoming/*.json"], "subject": "quality.assessment.replay"}`)
		comp, err := NewComponent(raw, component.Dependencies{Logger: slog.Default()})
		if err != nil {
			t.Fatalf("NewComponent failed: %v", err)
		}

		c := comp.(*Component)
		if c.config.Patterns[0] != "incoming/*.json" {
			t.Errorf("unexpected patterns: %v", c.config.Patterns)
		}
		if c.config.Subject != "quality.assessment.replay" {
			t.Errorf("unexpected subject: %s", c.config.Subject)
		}
	})

	t.Run("requires drop_dir", func(t *testing.T) {
		if _, err := NewComponent(json.RawMessage(`{}`), component.Dependencies{Logger: slog.Default()}); err == nil {
			t.Error("expected error for missing drop_dir")
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		if _, err := NewComponent(json.RawMessage(`{not json`), component.Dependencies{Logger: slog.Default()}); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing drop_dir",
			mutate:  func(c *Config) { c.DropDir = "" },
			wantErr: "drop_dir",
		},
		{
			name:    "missing subject",
			mutate:  func(c *Config) { c.Subject = "" },
			wantErr: "subject",
		},
		{
			name:    "no patterns",
			mutate:  func(c *Config) { c.Patterns = nil },
			wantErr: "pattern",
		},
		{
			name:    "malformed pattern",
			mutate:  func(c *Config) { c.Patterns = []string{"[broken"} },
			wantErr: "invalid pattern",
		},
		{
			name:    "bad debounce",
			mutate:  func(c *Config) { c.DebounceDelay = "soon" },
			wantErr: "debounce_delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.DropDir = "/tmp/drop"
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestConfigGetDebounceDelay(t *testing.T) {
	tests := []struct {
		name   string
		delay  string
		expect time.Duration
	}{
		{name: "valid duration", delay: "100ms", expect: 100 * time.Millisecond},
		{name: "empty string uses default", delay: "", expect: 500 * time.Millisecond},
		{name: "invalid duration uses default", delay: "invalid", expect: 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Config{DebounceDelay: tt.delay}
			if got := config.GetDebounceDelay(); got != tt.expect {
				t.Errorf("GetDebounceDelay() = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestParseDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		data := []byte(`{
			"dataset_uri": "https://data.example.com/datasets/budget-2024",
			"triples": [{"subject": "s", "predicate": "p", "object": "o"}]
		}`)

		payload, err := parseDocument(data)
		if err != nil {
			t.Fatalf("parseDocument failed: %v", err)
		}
		if payload.DatasetURI != "https://data.example.com/datasets/budget-2024" {
			t.Errorf("unexpected dataset URI: %s", payload.DatasetURI)
		}
		if payload.ReceivedAt.IsZero() {
			t.Error("expected missing received_at to be stamped")
		}
	})

	t.Run("keeps producer timestamp", func(t *testing.T) {
		data := []byte(`{
			"dataset_uri": "https://data.example.com/datasets/budget-2024",
			"triples": [{"subject": "s", "predicate": "p", "object": "o"}],
			"received_at": "2026-01-15T10:00:00Z"
		}`)

		payload, err := parseDocument(data)
		if err != nil {
			t.Fatalf("parseDocument failed: %v", err)
		}
		want := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
		if !payload.ReceivedAt.Equal(want) {
			t.Errorf("expected received_at %v, got %v", want, payload.ReceivedAt)
		}
	})

	t.Run("rejects unparseable document", func(t *testing.T) {
		if _, err := parseDocument([]byte(`not json`)); err == nil {
			t.Error("expected error for unparseable document")
		}
	})

	t.Run("rejects document without dataset URI", func(t *testing.T) {
		data := []byte(`{"triples": [{"subject": "s", "predicate": "p", "object": "o"}]}`)
		_, err := parseDocument(data)
		if err == nil {
			t.Fatal("expected error for missing dataset URI")
		}
		if !strings.Contains(err.Error(), "invalid assessment document") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects document without triples", func(t *testing.T) {
		data := []byte(`{"dataset_uri": "https://data.example.com/datasets/budget-2024"}`)
		if _, err := parseDocument(data); err == nil {
			t.Error("expected error for missing triples")
		}
	})
}

func TestStartRequiresNATSClient(t *testing.T) {
	config := DefaultConfig()
	config.DropDir = t.TempDir()

	c := &Component{
		name:   "file-source",
		config: config,
		logger: slog.Default(),
	}

	if err := c.Start(context.Background()); err == nil {
		t.Error("expected Start to fail without a NATS client")
	}
	if c.Health().Healthy {
		t.Error("component should not report healthy after failed start")
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	config := DefaultConfig()
	config.DropDir = t.TempDir()

	c := &Component{
		name:   "file-source",
		config: config,
		logger: slog.Default(),
	}

	if err := c.Stop(time.Second); err != nil {
		t.Errorf("Stop on a stopped component should be a no-op, got %v", err)
	}
}

func TestComponentMeta(t *testing.T) {
	config := DefaultConfig()
	config.DropDir = "/tmp/drop"

	c := &Component{name: "file-source", config: config, logger: slog.Default()}

	meta := c.Meta()
	if meta.Name != "file-source" {
		t.Errorf("unexpected name: %s", meta.Name)
	}
	if meta.Type != "processor" {
		t.Errorf("unexpected type: %s", meta.Type)
	}

	if got := len(c.InputPorts()); got != 0 {
		t.Errorf("expected no input ports, got %d", got)
	}

	outputs := c.OutputPorts()
	if len(outputs) != 1 {
		t.Fatalf("expected 1 output port, got %d", len(outputs))
	}
	natsPort, ok := outputs[0].Config.(component.NATSPort)
	if !ok {
		t.Fatalf("expected NATS port config, got %T", outputs[0].Config)
	}
	if natsPort.Subject != "quality.assessment.received" {
		t.Errorf("unexpected output subject: %s", natsPort.Subject)
	}
}
