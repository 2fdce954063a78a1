package collectors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/yair/eventfinder/pkg/domain"
)

func TestNewRedisSlotStore_MissingAddr(t *testing.T) {
	if _, err := NewRedisSlotStore(context.Background(), RedisSlotConfig{}); err == nil {
		t.Error("expected error for missing address")
	}
}

// Runs against a real server only when EVENTFINDER_TEST_REDIS_ADDR is set.
func TestRedisSlotStore(t *testing.T) {
	addr := os.Getenv("EVENTFINDER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EVENTFINDER_TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewRedisSlotStore(ctx, RedisSlotConfig{
		Addr:      addr,
		KeyPrefix: fmt.Sprintf("eventfinder-test-%d:", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer store.Close()

	if _, err := store.Load(ctx, "savedEvents"); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}

	if err := store.Save(ctx, "savedEvents", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := store.Load(ctx, "savedEvents")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("unexpected payload %s", got)
	}
}
