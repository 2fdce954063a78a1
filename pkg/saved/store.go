package saved

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yair/eventfinder/pkg/domain"
	"go.uber.org/zap"
)

const (
	DefaultMaxCapacity = 20
	DefaultSlot        = "savedEvents"

	DefaultPersistTimeout = 5 * time.Second

	OpLoad = "load"
	OpSave = "save"

	msgAlreadySaved = "event already saved"
	msgMissingID    = "event id is required"
)

// PersistReport describes one attempt to read or write the durable slot.
type PersistReport struct {
	Op    string
	Slot  string
	Count int
	Err   error
}

type Options struct {
	MaxCapacity int
	Slot        string
	Logger      *zap.Logger
	// PersistTimeout bounds each storage write. Writes ignore the caller's
	// cancellation so a committed mutation always reaches storage.
	PersistTimeout time.Duration
	// OnPersist is called after every load and save attempt, with the
	// store's lock held. It must not call back into the store.
	OnPersist func(PersistReport)
}

// Store is the bookmarked-events collection. The in-memory list is
// authoritative; storage mirrors it after every mutation on a best-effort
// basis.
type Store struct {
	mu          sync.RWMutex
	events      []domain.Event
	index       map[string]struct{}
	maxCapacity int
	slot        string
	storage     domain.SlotStorage
	logger      *zap.Logger
	onPersist   func(PersistReport)
	timeout     time.Duration
	lastErr     error
}

var _ domain.SavedEvents = (*Store)(nil)

// NewStore builds a store over storage and hydrates it from the slot.
// Unreadable or corrupt data yields an empty store, not an error.
func NewStore(ctx context.Context, storage domain.SlotStorage, opts Options) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("slot storage is required")
	}
	if opts.MaxCapacity < 0 {
		return nil, fmt.Errorf("max capacity must not be negative, got %d", opts.MaxCapacity)
	}
	if opts.MaxCapacity == 0 {
		opts.MaxCapacity = DefaultMaxCapacity
	}
	if opts.Slot == "" {
		opts.Slot = DefaultSlot
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = DefaultPersistTimeout
	}

	s := &Store{
		events:      make([]domain.Event, 0, opts.MaxCapacity),
		index:       make(map[string]struct{}),
		maxCapacity: opts.MaxCapacity,
		slot:        opts.Slot,
		storage:     storage,
		logger:      opts.Logger.With(zap.String("slot", opts.Slot)),
		onPersist:   opts.OnPersist,
		timeout:     opts.PersistTimeout,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx)

	return s, nil
}

func (s *Store) hydrate(ctx context.Context) {
	data, err := s.storage.Load(ctx, s.slot)
	if errors.Is(err, domain.ErrSlotNotFound) {
		s.report(PersistReport{Op: OpLoad, Slot: s.slot})
		return
	}
	if err != nil {
		s.logger.Warn("failed to load saved events, starting empty", zap.Error(err))
		s.report(PersistReport{Op: OpLoad, Slot: s.slot, Err: err})
		return
	}

	var stored []domain.Event
	if err := json.Unmarshal(data, &stored); err != nil {
		err = fmt.Errorf("corrupt saved events: %w", err)
		s.logger.Warn("discarding unreadable saved events", zap.Error(err))
		s.report(PersistReport{Op: OpLoad, Slot: s.slot, Err: err})
		return
	}

	dropped := 0
	for _, event := range stored {
		if event.ID == "" || s.has(event.ID) || len(s.events) >= s.maxCapacity {
			dropped++
			continue
		}
		s.insert(event)
	}
	if dropped > 0 {
		s.logger.Warn("dropped invalid saved events during load",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(s.events)))
	}

	s.report(PersistReport{Op: OpLoad, Slot: s.slot, Count: len(s.events)})
}

// Save bookmarks event. Rejections come back in the result, never as errors.
func (s *Store) Save(ctx context.Context, event domain.Event) domain.SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) >= s.maxCapacity {
		return domain.SaveResult{
			Message: fmt.Sprintf("you have reached the limit of %d saved events", s.maxCapacity),
			Reason:  domain.ErrCapacityExceeded,
		}
	}
	if s.has(event.ID) {
		return domain.SaveResult{Message: msgAlreadySaved, Reason: domain.ErrAlreadySaved}
	}
	if event.ID == "" {
		return domain.SaveResult{Message: msgMissingID, Reason: domain.ErrInvalidArgument}
	}

	s.insert(event)
	s.persist(ctx)

	return domain.SaveResult{Success: true}
}

// Remove drops the event with id if present and reports whether it was.
// Storage is rewritten either way.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	if s.has(id) {
		for i, event := range s.events {
			if event.ID == id {
				s.events = append(s.events[:i], s.events[i+1:]...)
				break
			}
		}
		delete(s.index, id)
		removed = true
	}

	s.persist(ctx)
	return removed
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make([]domain.Event, 0, s.maxCapacity)
	s.index = make(map[string]struct{})
	s.persist(ctx)
}

func (s *Store) IsSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.has(id)
}

// List returns a copy of the saved events in insertion order.
func (s *Store) List() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) Capacity() int {
	return s.maxCapacity
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) Full() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events) >= s.maxCapacity
}

// LastPersistError returns the outcome of the most recent storage attempt.
func (s *Store) LastPersistError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Store) insert(event domain.Event) {
	s.events = append(s.events, event)
	s.index[event.ID] = struct{}{}
}

// persist must be called with the write lock held.
func (s *Store) persist(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	data, err := json.Marshal(s.events)
	if err == nil {
		err = s.storage.Save(ctx, s.slot, data)
	}
	if err != nil {
		s.logger.Error("failed to persist saved events",
			zap.Int("count", len(s.events)),
			zap.Error(err))
	}
	s.report(PersistReport{Op: OpSave, Slot: s.slot, Count: len(s.events), Err: err})
}

func (s *Store) report(r PersistReport) {
	s.lastErr = r.Err
	if s.onPersist != nil {
		s.onPersist(r)
	}
}
