package interfaces

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yair/eventfinder/pkg/domain"
)

// EventService validates caller input before it reaches the catalog.
type EventService struct {
	catalog domain.EventCatalog
}

var _ domain.EventService = (*EventService)(nil)

func NewEventService(catalog domain.EventCatalog) *EventService {
	return &EventService{
		catalog: catalog,
	}
}

func (s *EventService) SearchEvents(ctx context.Context, query domain.SearchQuery) (*domain.PageResult, error) {
	query.Keyword = strings.TrimSpace(query.Keyword)
	query.City = strings.TrimSpace(query.City)
	query.ClassificationName = strings.TrimSpace(query.ClassificationName)

	if err := validateQuery(query); err != nil {
		return nil, err
	}

	result, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	return result, nil
}

func (s *EventService) PopularEvents(ctx context.Context) (*domain.PageResult, error) {
	result, err := s.catalog.SearchPopular(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch popular events: %w", err)
	}
	return result, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ValidationError{Field: "id", Message: "event id is required"}
	}

	event, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return event, nil
}

func validateQuery(query domain.SearchQuery) error {
	if query.Page < 0 {
		return domain.ValidationError{Field: "page", Message: "must not be negative"}
	}
	if query.Size < 0 || query.Size > domain.MaxPageSize {
		return domain.ValidationError{
			Field:   "size",
			Message: fmt.Sprintf("must be between 0 and %d", domain.MaxPageSize),
		}
	}

	start, err := parseBound("startDateTime", query.StartDateTime)
	if err != nil {
		return err
	}
	end, err := parseBound("endDateTime", query.EndDateTime)
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return domain.ValidationError{Field: "startDateTime", Message: "must not be after endDateTime"}
	}

	return nil
}

func parseBound(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: field, Message: "must be an RFC 3339 timestamp"}
	}
	return t, nil
}
