package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/c360studio/semscore/score"
)

// defaultMaxOpenConns caps the connection pool when the config doesn't.
const defaultMaxOpenConns = 16

// PostgresConfig holds connection settings for the assessment database.
type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
}

// ConnString builds a lib/pq connection string from the config.
func (c PostgresConfig) ConnString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// PostgresStore persists assessments and dimension scores in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ AssessmentStore = (*PostgresStore)(nil)

// NewPostgresStore opens a connection pool against the configured database,
// verifies connectivity, and ensures the schema exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = defaultMaxOpenConns
	}
	db.SetMaxOpenConns(maxConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the assessment tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS dataset_assessments (
			id VARCHAR PRIMARY KEY,
			dataset_uri VARCHAR NOT NULL,
			turtle_assessment TEXT NOT NULL,
			jsonld_assessment TEXT NOT NULL,
			json_score TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS dimensions (
			dataset_uri VARCHAR NOT NULL,
			id VARCHAR NOT NULL,
			score INTEGER NOT NULL,
			max_score INTEGER NOT NULL,
			PRIMARY KEY (dataset_uri, id)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("execute schema query: %w", err)
		}
	}
	return nil
}

// SaveAssessment upserts the assessment and replaces all dimension rows for
// its dataset URI within a single transaction, so concurrent readers never
// observe rows from two different assessments of the same dataset.
func (s *PostgresStore) SaveAssessment(ctx context.Context, a Assessment, rows []score.DimensionRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dataset_assessments (id, dataset_uri, turtle_assessment, jsonld_assessment, json_score)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
			dataset_uri = EXCLUDED.dataset_uri,
			turtle_assessment = EXCLUDED.turtle_assessment,
			jsonld_assessment = EXCLUDED.jsonld_assessment,
			json_score = EXCLUDED.json_score`,
		a.ID, a.DatasetURI, a.TurtleAssessment, a.JSONLDAssessment, a.JSONScore); err != nil {
		return fmt.Errorf("upsert assessment: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM dimensions WHERE dataset_uri = $1`, a.DatasetURI); err != nil {
		return fmt.Errorf("clear dimension rows: %w", err)
	}

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dimensions (dataset_uri, id, score, max_score)
			 VALUES ($1, $2, $3, $4)`,
			a.DatasetURI, row.ID, row.Score, row.MaxScore); err != nil {
			return fmt.Errorf("insert dimension row %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Assessment returns the full stored assessment by its ID.
func (s *PostgresStore) Assessment(ctx context.Context, id string) (Assessment, error) {
	var a Assessment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, dataset_uri, turtle_assessment, jsonld_assessment, json_score
		 FROM dataset_assessments WHERE id = $1`, id).
		Scan(&a.ID, &a.DatasetURI, &a.TurtleAssessment, &a.JSONLDAssessment, &a.JSONScore)
	if errors.Is(err, sql.ErrNoRows) {
		return Assessment{}, ErrNotFound
	}
	if err != nil {
		return Assessment{}, fmt.Errorf("query assessment: %w", err)
	}
	return a, nil
}

// ScoreJSON returns the stored score document for an assessment ID.
func (s *PostgresStore) ScoreJSON(ctx context.Context, id string) (string, error) {
	return s.queryText(ctx,
		`SELECT json_score FROM dataset_assessments WHERE id = $1`, id)
}

// TurtleGraph returns the stored Turtle rendering for an assessment ID.
func (s *PostgresStore) TurtleGraph(ctx context.Context, id string) (string, error) {
	return s.queryText(ctx,
		`SELECT turtle_assessment FROM dataset_assessments WHERE id = $1`, id)
}

// JSONLDGraph returns the stored JSON-LD rendering for an assessment ID.
func (s *PostgresStore) JSONLDGraph(ctx context.Context, id string) (string, error) {
	return s.queryText(ctx,
		`SELECT jsonld_assessment FROM dataset_assessments WHERE id = $1`, id)
}

// queryText runs a single-column text lookup, mapping missing rows to
// ErrNotFound.
func (s *PostgresStore) queryText(ctx context.Context, query, id string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query assessment: %w", err)
	}
	return value, nil
}

// DimensionRows returns the dimension rows recorded for a dataset URI.
func (s *PostgresStore) DimensionRows(ctx context.Context, datasetURI string) ([]score.DimensionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset_uri, id, score, max_score
		 FROM dimensions WHERE dataset_uri = $1 ORDER BY id`, datasetURI)
	if err != nil {
		return nil, fmt.Errorf("query dimension rows: %w", err)
	}
	defer rows.Close()

	var result []score.DimensionRow
	for rows.Next() {
		var r score.DimensionRow
		if err := rows.Scan(&r.DatasetURI, &r.ID, &r.Score, &r.MaxScore); err != nil {
			return nil, fmt.Errorf("scan dimension row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// AggregateDimensions averages dimension scores across the given datasets
// with a single grouped query. Dataset URIs arrive from API callers, so they
// are bound as an array parameter rather than interpolated into the SQL.
func (s *PostgresStore) AggregateDimensions(ctx context.Context, datasetURIs []string) (map[string]score.DimensionAggregate, error) {
	aggregates := make(map[string]score.DimensionAggregate)
	if len(datasetURIs) == 0 {
		return aggregates, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, AVG(score)::float8, AVG(max_score)::float8
		 FROM dimensions
		 WHERE dataset_uri = ANY($1)
		 GROUP BY id`, pq.Array(datasetURIs))
	if err != nil {
		return nil, fmt.Errorf("query dimension aggregates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var agg score.DimensionAggregate
		if err := rows.Scan(&agg.ID, &agg.Score, &agg.MaxScore); err != nil {
			return nil, fmt.Errorf("scan dimension aggregate: %w", err)
		}
		aggregates[agg.ID] = agg
	}
	return aggregates, rows.Err()
}

// Ping verifies database connectivity with a round trip.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
