package domain

import (
	"context"
)

// EventCatalog is the read side of the upstream ticketing API.
type EventCatalog interface {
	Search(ctx context.Context, query SearchQuery) (*PageResult, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	SearchPopular(ctx context.Context) (*PageResult, error)
}

// SlotStorage keeps opaque serialized values under a name. Load returns
// ErrSlotNotFound when nothing was stored yet.
type SlotStorage interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, data []byte) error
}

type EventService interface {
	SearchEvents(ctx context.Context, query SearchQuery) (*PageResult, error)
	PopularEvents(ctx context.Context) (*PageResult, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
}

// SaveResult reports the outcome of bookmarking an event. Rejections are
// values, not errors: Reason is ErrCapacityExceeded, ErrAlreadySaved or
// ErrInvalidArgument when Success is false.
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Reason  error  `json:"-"`
}

type SavedEvents interface {
	Save(ctx context.Context, event Event) SaveResult
	Remove(ctx context.Context, id string) bool
	Clear(ctx context.Context)
	IsSaved(id string) bool
	List() []Event
	Capacity() int
}
