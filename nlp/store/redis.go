package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielgalbraith/DepTrain/nlp/pipeline"
	"github.com/danielgalbraith/DepTrain/util/logging"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const REDIS_MAX_RETRIES = 6

var ErrNotFound = errors.New("model not found")

// RedisStore keeps a gob encoded pipeline under a single key.
type RedisStore struct {
	Key        string
	Expiration time.Duration

	client redis.UniversalClient
	log    zerolog.Logger
}

var _ Store = &RedisStore{}

func NewRedisStore(addr, key string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		MaxRetries: REDIS_MAX_RETRIES,
	})
	return NewRedisStoreFromClient(client, key)
}

func NewRedisStoreFromClient(client redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{
		Key:    key,
		client: client,
		log:    logging.NewLogger("redis store").With().Str("key", key).Logger(),
	}
}

func (s *RedisStore) Save(ctx context.Context, p *pipeline.Pipeline) error {
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.Key, buf.Bytes(), s.Expiration).Err(); err != nil {
		return fmt.Errorf("saving model to redis: %w", err)
	}
	s.log.Info().Int("bytes", buf.Len()).Msg("saved model")
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*pipeline.Pipeline, error) {
	data, err := s.client.Get(ctx, s.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", s.Key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading model from redis: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

func (s *RedisStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.Key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
