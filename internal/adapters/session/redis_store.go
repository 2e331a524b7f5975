package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/uniempresarial/bienestar-client/internal/config"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

// RedisClient is the subset of *redis.Client the store uses.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps the access token in Redis so that separate CLI runs share
// one login.
type RedisStore struct {
	client RedisClient
	key    string
	cb     *gobreaker.CircuitBreaker
	now    func() time.Time
}

var _ ports.SessionStore = (*RedisStore)(nil)

func NewRedisStore(client RedisClient, key string, log logrus.FieldLogger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
		cb:     config.NewCircuitBreaker(config.BreakerSession, log),
		now:    time.Now,
	}
}

func (s *RedisStore) SaveToken(ctx context.Context, token string) error {
	ttl, err := TokenTTL(token, s.now())
	if err != nil {
		return err
	}
	_, err = s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, s.key, token, ttl).Err()
	})
	return err
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		token, err := s.client.Get(ctx, s.key).Result()
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return token, err
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, s.key).Err()
	})
	return err
}
