package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yair/eventfinder/pkg/domain"
)

type mockEventService struct {
	searchFunc  func(ctx context.Context, query domain.SearchQuery) (*domain.PageResult, error)
	popularFunc func(ctx context.Context) (*domain.PageResult, error)
	getFunc     func(ctx context.Context, id string) (*domain.Event, error)
}

func (m *mockEventService) SearchEvents(ctx context.Context, query domain.SearchQuery) (*domain.PageResult, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query)
	}
	return domain.EmptyPage(), nil
}

func (m *mockEventService) PopularEvents(ctx context.Context) (*domain.PageResult, error) {
	if m.popularFunc != nil {
		return m.popularFunc(ctx)
	}
	return domain.EmptyPage(), nil
}

func (m *mockEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return &domain.Event{ID: id}, nil
}

func newEventRouter(service domain.EventService) *mux.Router {
	return NewRouter(nil, NewEventHandler(service, nil))
}

func serve(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestEventHandler_SearchEvents(t *testing.T) {
	t.Run("passes query parameters", func(t *testing.T) {
		var got domain.SearchQuery
		service := &mockEventService{
			searchFunc: func(ctx context.Context, query domain.SearchQuery) (*domain.PageResult, error) {
				got = query
				return &domain.PageResult{
					Events: []domain.Event{{ID: "1", Name: "Show"}},
					Page:   domain.PageInfo{Number: 1, Size: 5, TotalPages: 3, TotalElements: 11},
				}, nil
			},
		}

		rr := serve(newEventRouter(service), "GET",
			"/api/events?keyword=rock&city=Rio&classificationName=Music&startDateTime=2025-01-01T00:00:00Z&page=1&size=5")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.SearchQuery{
			Keyword:            "rock",
			City:               "Rio",
			ClassificationName: "Music",
			StartDateTime:      "2025-01-01T00:00:00Z",
			Page:               1,
			Size:               5,
		}, got)
		assert.Equal(t, catalogCacheControl, rr.Header().Get("Cache-Control"))
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var result domain.PageResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Len(t, result.Events, 1)
		assert.Equal(t, 11, result.Page.TotalElements)
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		rr := serve(newEventRouter(&mockEventService{}), "GET", "/api/events")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"events":[],"page":{"number":0,"size":0,"totalPages":0,"totalElements":0}}`, rr.Body.String())
	})

	t.Run("non-integer page", func(t *testing.T) {
		rr := serve(newEventRouter(&mockEventService{}), "GET", "/api/events?page=abc")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, rr.Header().Get("Cache-Control"))
	})

	t.Run("non-integer size", func(t *testing.T) {
		rr := serve(newEventRouter(&mockEventService{}), "GET", "/api/events?size=lots")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEventHandler_Summary(t *testing.T) {
	now := time.Date(2030, 9, 10, 22, 0, 0, 0, time.UTC)
	service := &mockEventService{
		getFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			return &domain.Event{
				ID:          id,
				Name:        "Rock in Rio",
				Images:      []domain.Image{{URL: "https://img/wide.jpg", Ratio: "16_9", Width: 1024}},
				Dates:       &domain.EventDates{Start: domain.EventStart{DateTime: "2030-09-13T22:00:00Z"}},
				PriceRanges: []domain.PriceRange{{Min: 100, Max: 500, Currency: "BRL"}},
				Classifications: []domain.Classification{{
					Segment: &domain.NamedRef{Name: "Music"},
					Genre:   &domain.NamedRef{Name: "Rock"},
				}},
				Embedded: &domain.EventEmbedded{Venues: []domain.Venue{{
					Name:  "Parque Olimpico",
					City:  &domain.VenueCity{Name: "Rio de Janeiro"},
					State: &domain.VenueState{StateCode: "RJ"},
				}}},
			}, nil
		},
		searchFunc: func(ctx context.Context, query domain.SearchQuery) (*domain.PageResult, error) {
			return &domain.PageResult{Events: []domain.Event{{ID: "1", Name: "Show"}}}, nil
		},
	}

	handler := NewEventHandler(service, nil)
	handler.now = func() time.Time { return now }
	router := NewRouter(nil, handler)

	t.Run("detail", func(t *testing.T) {
		rr := serve(router, "GET", "/api/events/abc")
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			ID      string              `json:"id"`
			Summary domain.EventSummary `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

		assert.Equal(t, "abc", body.ID)
		assert.Equal(t, "https://img/wide.jpg", body.Summary.Image)
		assert.Equal(t, domain.PriceSummary{Min: 100, Max: 500, Currency: "BRL"}, body.Summary.Price)
		assert.Equal(t, []string{"Music", "Rock"}, body.Summary.Categories)
		assert.Equal(t, domain.StatusOnSale, body.Summary.Status)
		assert.Equal(t, "Parque Olimpico, Rio de Janeiro - RJ", body.Summary.Venue)
		require.NotNil(t, body.Summary.Countdown)
		assert.Equal(t, domain.Countdown{Days: 3}, *body.Summary.Countdown)
		require.NotNil(t, body.Summary.Start)
		assert.True(t, body.Summary.Start.Equal(time.Date(2030, 9, 13, 22, 0, 0, 0, time.UTC)))
	})

	t.Run("search results", func(t *testing.T) {
		rr := serve(router, "GET", "/api/events")
		require.Equal(t, http.StatusOK, rr.Code)

		var page domain.PageView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
		require.Len(t, page.Events, 1)
		assert.Equal(t, "1", page.Events[0].ID)
		assert.Equal(t, domain.StatusDateTBD, page.Events[0].Summary.Status)
		assert.Equal(t, domain.PlaceholderImageURL, page.Events[0].Summary.Image)
	})
}

func TestEventHandler_PopularEvents(t *testing.T) {
	called := false
	service := &mockEventService{
		popularFunc: func(ctx context.Context) (*domain.PageResult, error) {
			called = true
			return domain.EmptyPage(), nil
		},
		getFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			t.Errorf("popular route must not resolve as an event id, got %q", id)
			return nil, nil
		},
	}

	rr := serve(newEventRouter(service), "GET", "/api/events/popular")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)
}

func TestEventHandler_GetEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockEventService{
			getFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				return &domain.Event{ID: id, Name: "Test Event"}, nil
			},
		}

		rr := serve(newEventRouter(service), "GET", "/api/events/123")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"id":"123","name":"Test Event","summary":{"image":"https://via.placeholder.com/400x300?text=No+Image","price":{"min":0,"max":0,"currency":"BRL"},"status":"date_tbd"}}`, rr.Body.String())
		assert.Equal(t, catalogCacheControl, rr.Header().Get("Cache-Control"))
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"invalid argument", domain.ValidationError{Field: "id", Message: "event id is required"}, http.StatusBadRequest, ""},
		{"not found", fmt.Errorf("failed to get event: %w", domain.ErrEventNotFound), http.StatusNotFound, "event not found"},
		{"upstream failure", &domain.UpstreamError{StatusCode: 500, Body: "oops"}, http.StatusBadGateway, "failed to fetch event"},
		{"malformed response", domain.ErrMalformedResponse, http.StatusBadGateway, "failed to fetch event"},
		{"transport failure", &domain.TransportError{Op: "get event", Err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable, "event service unavailable"},
		{"deadline", &domain.TransportError{Op: "get event", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, "upstream request timed out"},
		{"unknown", errors.New("something else"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockEventService{
				getFunc: func(ctx context.Context, id string) (*domain.Event, error) {
					return nil, tt.err
				},
			}

			rr := serve(newEventRouter(service), "GET", "/api/events/abc")
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Empty(t, rr.Header().Get("Cache-Control"))

			var body errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body.Error)
			} else {
				assert.NotEmpty(t, body.Error)
			}
		})
	}
}

func TestEventHandler_WithRealService(t *testing.T) {
	catalog := &mockCatalog{}
	router := newEventRouter(NewEventService(catalog))

	rr := serve(router, "GET", "/api/events?size=500")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid_argument")
	assert.Equal(t, 0, catalog.searchCalls)

	rr = serve(router, "GET", "/api/events/%20")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, catalog.getCalls)
}
