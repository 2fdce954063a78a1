package integrations

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/yair/eventfinder/pkg/domain"
	"go.uber.org/zap"
)

type CacheConfig struct {
	Size     int           // entries per cache (searches and details each)
	FreshFor time.Duration // served without contacting the upstream
	StaleFor time.Duration // extra window in which entries back up upstream failures
	Logger   *zap.Logger
}

type cachedPage struct {
	page     domain.PageResult
	storedAt time.Time
}

type cachedEvent struct {
	event    domain.Event
	storedAt time.Time
}

// CachedCatalog decorates an EventCatalog with a fresh/stale response cache.
// Stale entries are only served when the upstream fails.
type CachedCatalog struct {
	next     domain.EventCatalog
	fresh    time.Duration
	searches *expirable.LRU[string, cachedPage]
	events   *expirable.LRU[string, cachedEvent]
	now      func() time.Time
	logger   *zap.Logger
}

func NewCachedCatalog(next domain.EventCatalog, config CacheConfig) (*CachedCatalog, error) {
	if next == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if config.Size <= 0 {
		config.Size = 512
	}
	if config.FreshFor <= 0 {
		config.FreshFor = time.Hour
	}
	if config.StaleFor < 0 {
		config.StaleFor = 0
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ttl := config.FreshFor + config.StaleFor
	return &CachedCatalog{
		next:     next,
		fresh:    config.FreshFor,
		searches: expirable.NewLRU[string, cachedPage](config.Size, nil, ttl),
		events:   expirable.NewLRU[string, cachedEvent](config.Size, nil, ttl),
		now:      time.Now,
		logger:   logger.Named("catalog_cache"),
	}, nil
}

func (c *CachedCatalog) Search(ctx context.Context, query domain.SearchQuery) (*domain.PageResult, error) {
	key := searchKey(query)

	entry, ok := c.searches.Get(key)
	if ok && c.isFresh(entry.storedAt) {
		return copyPage(entry.page), nil
	}

	page, err := c.next.Search(ctx, query)
	if err != nil {
		if ok && servesStale(err) {
			c.logger.Warn("serving stale search results", zap.String("key", key), zap.Error(err))
			return copyPage(entry.page), nil
		}
		return nil, err
	}

	c.searches.Add(key, cachedPage{page: *copyPage(*page), storedAt: c.now()})
	return page, nil
}

func (c *CachedCatalog) SearchPopular(ctx context.Context) (*domain.PageResult, error) {
	return c.Search(ctx, domain.SearchQuery{Size: domain.PopularPageSize})
}

func (c *CachedCatalog) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	entry, ok := c.events.Get(id)
	if ok && c.isFresh(entry.storedAt) {
		event := entry.event.Clone()
		return &event, nil
	}

	event, err := c.next.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.events.Remove(id)
			return nil, err
		}
		if ok && servesStale(err) {
			c.logger.Warn("serving stale event", zap.String("event_id", id), zap.Error(err))
			stale := entry.event.Clone()
			return &stale, nil
		}
		return nil, err
	}

	c.events.Add(id, cachedEvent{event: event.Clone(), storedAt: c.now()})
	return event, nil
}

// Purge drops every cached response.
func (c *CachedCatalog) Purge() {
	c.searches.Purge()
	c.events.Purge()
}

func (c *CachedCatalog) isFresh(storedAt time.Time) bool {
	return c.now().Sub(storedAt) < c.fresh
}

func servesStale(err error) bool {
	return domain.IsUpstreamFailure(err) && !IsCanceled(err)
}

// searchKey encodes the normalized query with escaped values, so distinct
// queries never collide.
func searchKey(query domain.SearchQuery) string {
	q := query.Normalized()
	return url.Values{
		"keyword":            {q.Keyword},
		"city":               {q.City},
		"classificationName": {q.ClassificationName},
		"startDateTime":      {q.StartDateTime},
		"endDateTime":        {q.EndDateTime},
		"page":               {strconv.Itoa(q.Page)},
		"size":               {strconv.Itoa(q.Size)},
	}.Encode()
}

// copyPage deep-copies page so callers and the cache never share events.
func copyPage(page domain.PageResult) *domain.PageResult {
	events := make([]domain.Event, len(page.Events))
	for i, event := range page.Events {
		events[i] = event.Clone()
	}
	return &domain.PageResult{Events: events, Page: page.Page}
}
