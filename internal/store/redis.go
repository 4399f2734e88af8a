package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each configuration document as one JSON value. Redis
// has no server-side JSON merge, so Save reads the existing document and
// merges top-level fields on the client before writing back; updated_at
// is stamped at write time.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg Config) (*RedisStore, error) {
	if cfg.RedisAddress == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func documentKey(collection, id string) string {
	return fmt.Sprintf("%s:%s", collection, id)
}

// Load fetches a document. A missing key is (nil, nil).
func (s *RedisStore) Load(ctx context.Context, collection, id string) (Document, error) {
	raw, err := s.client.Get(ctx, documentKey(collection, id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyRedisError("load", err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &StoreError{Kind: KindUnreachable, Op: "load", Err: fmt.Errorf("decode document: %w", err)}
	}
	return doc, nil
}

// Save merges the document over the stored one and writes it back with a
// fresh updated_at.
func (s *RedisStore) Save(ctx context.Context, collection, id string, doc Document) error {
	existing, err := s.Load(ctx, collection, id)
	if err != nil {
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			storeErr.Op = "save"
			return storeErr
		}
		return &StoreError{Kind: KindUnreachable, Op: "save", Err: err}
	}

	merged := MergeDocuments(existing, doc)
	merged["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	payload, err := json.Marshal(merged)
	if err != nil {
		return &StoreError{Kind: KindUnreachable, Op: "save", Err: fmt.Errorf("encode document: %w", err)}
	}

	if err := s.client.Set(ctx, documentKey(collection, id), payload, 0).Err(); err != nil {
		return classifyRedisError("save", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// classifyRedisError maps driver errors onto the store taxonomy. Redis
// reports auth failures as plain error strings, so matching is textual.
func classifyRedisError(op string, err error) *StoreError {
	msg := strings.ToUpper(err.Error())
	if strings.Contains(msg, "NOAUTH") || strings.Contains(msg, "WRONGPASS") || strings.Contains(msg, "NOPERM") {
		return &StoreError{Kind: KindPermissionDenied, Op: op, Err: err}
	}
	return &StoreError{Kind: KindUnreachable, Op: op, Err: err}
}
