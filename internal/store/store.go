// Package store provides the optional remote document store used to
// persist configuration. It exposes a single named document per
// collection with merge-write semantics and degrades to "no store" when
// the backend is unavailable: connection failures are logged, never
// propagated, and the rest of the system runs on local defaults.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Collection and document names for the framework configuration.
const (
	ConfigCollection = "aatf_config"
	ConfigDocumentID = "main"
)

// Document is one JSON document held in the remote store.
type Document map[string]interface{}

// Store is the capability surface of a remote document store.
type Store interface {
	// Load fetches a document. A missing document is (nil, nil), not an
	// error; only transport or permission failures return a StoreError.
	Load(ctx context.Context, collection, id string) (Document, error)
	// Save writes the document with merge semantics: fields present in
	// the existing remote document but absent from doc are preserved.
	// The backend assigns the updated_at timestamp.
	Save(ctx context.Context, collection, id string, doc Document) error
	// Close releases the backend handle.
	Close()
}

// Config selects and parameterizes the store backend. Credentials may be
// supplied inline or via a credentials file named by CredentialsFile.
type Config struct {
	Backend         string `json:"backend"` // "postgres", "redis", or "" for disabled
	PostgresDSN     string `json:"postgres_dsn"`
	RedisAddress    string `json:"redis_address"`
	RedisPassword   string `json:"redis_password"`
	RedisDB         int    `json:"redis_db"`
	CredentialsFile string `json:"credentials_file"` // optional JSON file overriding the above
}

// credentialsFile is the on-disk shape of the optional credentials file.
type credentialsFile struct {
	Backend       string `json:"backend"`
	PostgresDSN   string `json:"postgres_dsn"`
	RedisAddress  string `json:"redis_address"`
	RedisPassword string `json:"redis_password"`
	RedisDB       *int   `json:"redis_db"`
}

// TryConnect attempts to open the configured backend. It never returns an
// error: any failure (missing credentials file, unreachable backend,
// rejected auth) is logged as a warning and yields nil, leaving the caller
// in local-defaults-only mode.
func TryConnect(ctx context.Context, cfg Config, logger zerolog.Logger) Store {
	if cfg.CredentialsFile != "" {
		if err := applyCredentialsFile(&cfg); err != nil {
			logger.Warn().Err(err).Str("path", cfg.CredentialsFile).
				Msg("Store credentials file unusable, falling back to inline settings")
		}
	}

	var (
		st  Store
		err error
	)
	switch cfg.Backend {
	case "postgres":
		st, err = NewPostgresStore(ctx, cfg.PostgresDSN)
	case "redis":
		st, err = NewRedisStore(ctx, cfg)
	case "":
		logger.Info().Msg("No store backend configured, running on local defaults")
		return nil
	default:
		logger.Warn().Str("backend", cfg.Backend).Msg("Unknown store backend, running on local defaults")
		return nil
	}

	if err != nil {
		logger.Warn().Err(err).Str("backend", cfg.Backend).
			Msg("Remote store unavailable, running on local defaults")
		return nil
	}

	logger.Info().Str("backend", cfg.Backend).Msg("Remote store connected")
	return st
}

func applyCredentialsFile(cfg *Config) error {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("read credentials file: %w", err)
	}
	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("parse credentials file: %w", err)
	}
	if creds.Backend != "" {
		cfg.Backend = creds.Backend
	}
	if creds.PostgresDSN != "" {
		cfg.PostgresDSN = creds.PostgresDSN
	}
	if creds.RedisAddress != "" {
		cfg.RedisAddress = creds.RedisAddress
	}
	if creds.RedisPassword != "" {
		cfg.RedisPassword = creds.RedisPassword
	}
	if creds.RedisDB != nil {
		cfg.RedisDB = *creds.RedisDB
	}
	return nil
}

// MergeDocuments returns base with every top-level field of overlay set on
// it. Fields of base absent from overlay survive, which is what a merge
// write preserves on the backend.
func MergeDocuments(base, overlay Document) Document {
	merged := make(Document, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}
