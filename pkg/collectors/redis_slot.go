package collectors

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/yair/eventfinder/pkg/domain"
)

type RedisSlotConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisSlotStore keeps each slot as a plain string key.
type RedisSlotStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSlotStore(ctx context.Context, config RedisSlotConfig) (*RedisSlotStore, error) {
	if config.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSlotStore{client: client, prefix: config.KeyPrefix}, nil
}

func (s *RedisSlotStore) Load(ctx context.Context, slot string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %s: %w", slot, err)
	}
	return data, nil
}

func (s *RedisSlotStore) Save(ctx context.Context, slot string, data []byte) error {
	if slot == "" {
		return fmt.Errorf("slot name is required")
	}
	if err := s.client.Set(ctx, s.key(slot), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", slot, err)
	}
	return nil
}

func (s *RedisSlotStore) Close() error {
	return s.client.Close()
}

func (s *RedisSlotStore) key(slot string) string {
	return s.prefix + slot
}
