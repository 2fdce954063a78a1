package collectors

import (
	"context"
	"fmt"
	"sync"

	"github.com/yair/eventfinder/pkg/domain"
)

// MemorySlotStore is a process-local SlotStorage. Nothing survives a restart.
type MemorySlotStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{slots: make(map[string][]byte)}
}

func (s *MemorySlotStore) Load(ctx context.Context, slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[slot]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemorySlotStore) Save(ctx context.Context, slot string, data []byte) error {
	if slot == "" {
		return fmt.Errorf("slot name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[slot] = append([]byte{}, data...)
	return nil
}
