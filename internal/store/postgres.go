package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps configuration documents in a single JSONB table.
// Merge writes happen server-side with the || operator, and updated_at is
// assigned by the database clock.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const createConfigTable = `
CREATE TABLE IF NOT EXISTS aatf_config (
	collection TEXT NOT NULL,
	doc_id     TEXT NOT NULL,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, doc_id)
)`

// NewPostgresStore connects to PostgreSQL and ensures the config table
// exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(connectCtx, createConfigTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to create config table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Load fetches a document. A missing row is (nil, nil).
func (s *PostgresStore) Load(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM aatf_config WHERE collection = $1 AND doc_id = $2`,
		collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyPostgresError("load", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &StoreError{Kind: KindUnreachable, Op: "load", Err: fmt.Errorf("decode document: %w", err)}
	}
	return doc, nil
}

// Save upserts the document. On conflict the stored JSONB is merged with
// the new payload so remote-only fields survive, and updated_at is set by
// the server.
func (s *PostgresStore) Save(ctx context.Context, collection, id string, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return &StoreError{Kind: KindUnreachable, Op: "save", Err: fmt.Errorf("encode document: %w", err)}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO aatf_config (collection, doc_id, doc, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (collection, doc_id) DO UPDATE SET
			doc = aatf_config.doc || EXCLUDED.doc,
			updated_at = now()`,
		collection, id, payload)
	if err != nil {
		return classifyPostgresError("save", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// classifyPostgresError maps driver errors onto the store taxonomy.
func classifyPostgresError(op string, err error) *StoreError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28000", "28P01", "42501": // invalid auth, bad password, insufficient privilege
			return &StoreError{Kind: KindPermissionDenied, Op: op, Err: err}
		}
	}
	return &StoreError{Kind: KindUnreachable, Op: op, Err: err}
}
