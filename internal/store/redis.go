package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// RedisUploadStore shares uploads across service replicas. Tables are stored
// as JSON record arrays under a key prefix with Redis handling expiry.
type RedisUploadStore struct {
	client *redis.Client
	ttl    time.Duration
}

const redisUploadPrefix = "forecastlab:upload:"

// NewRedisUploadStore connects using a redis URL
// (redis://[user:pass@]host:port/db) and verifies the connection.
func NewRedisUploadStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisUploadStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisUploadStore{client: client, ttl: ttl}, nil
}

func (s *RedisUploadStore) Put(ctx context.Context, id string, tbl *timeseries.Table) error {
	payload, err := json.Marshal(tbl.Records())
	if err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}
	if err := s.client.Set(ctx, redisUploadPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

func (s *RedisUploadStore) Get(ctx context.Context, id string) (*timeseries.Table, error) {
	payload, err := s.client.Get(ctx, redisUploadPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load upload: %w", err)
	}

	var records []timeseries.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode upload: %w", err)
	}
	tbl, err := timeseries.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("rebuild upload: %w", err)
	}
	return tbl, nil
}

func (s *RedisUploadStore) Close() error {
	return s.client.Close()
}
