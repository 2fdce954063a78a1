package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yair/eventfinder/pkg/collectors"
	"github.com/yair/eventfinder/pkg/domain"
	"github.com/yair/eventfinder/pkg/saved"
)

func newSavedRouter(t *testing.T, capacity int, events domain.EventService) (*mux.Router, *saved.Store) {
	t.Helper()
	store, err := saved.NewStore(context.Background(), collectors.NewMemorySlotStore(), saved.Options{MaxCapacity: capacity})
	require.NoError(t, err)
	if events == nil {
		events = &mockEventService{}
	}
	return NewRouter(nil, NewSavedHandler(store, events, nil), NewHealthHandler(store)), store
}

func postEvent(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/saved", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestSavedHandler_SaveEvent(t *testing.T) {
	router, store := newSavedRouter(t, 2, nil)

	rr := postEvent(router, `{"id":"1","name":"First"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.True(t, store.IsSaved("1"))

	t.Run("duplicate", func(t *testing.T) {
		rr := postEvent(router, `{"id":"1","name":"First"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"success":false,"message":"event already saved","reason":"already_saved"}`, rr.Body.String())
	})

	t.Run("capacity", func(t *testing.T) {
		require.Equal(t, http.StatusCreated, postEvent(router, `{"id":"2"}`).Code)

		rr := postEvent(router, `{"id":"3"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		var body saveResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "capacity_exceeded", body.Reason)
		assert.Equal(t, "you have reached the limit of 2 saved events", body.Message)
	})

	t.Run("invalid payload", func(t *testing.T) {
		rr := postEvent(router, `{not json`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSavedHandler_SaveEventMissingID(t *testing.T) {
	router, _ := newSavedRouter(t, 0, nil)

	rr := postEvent(router, `{"name":"nameless"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid_argument")
}

func TestSavedHandler_SaveEventByID(t *testing.T) {
	t.Run("fetches then saves", func(t *testing.T) {
		events := &mockEventService{
			getFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				return &domain.Event{ID: id, Name: "Fetched"}, nil
			},
		}
		router, store := newSavedRouter(t, 0, events)

		rr := serve(router, "PUT", "/api/saved/42")
		require.Equal(t, http.StatusCreated, rr.Code)
		require.Len(t, store.List(), 1)
		assert.Equal(t, "Fetched", store.List()[0].Name)
	})

	t.Run("unknown event", func(t *testing.T) {
		events := &mockEventService{
			getFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				return nil, fmt.Errorf("failed to get event: %w", domain.ErrEventNotFound)
			},
		}
		router, store := newSavedRouter(t, 0, events)

		rr := serve(router, "PUT", "/api/saved/missing")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("upstream failure", func(t *testing.T) {
		events := &mockEventService{
			getFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				return nil, &domain.UpstreamError{StatusCode: 503, Body: "down"}
			},
		}
		router, _ := newSavedRouter(t, 0, events)

		rr := serve(router, "PUT", "/api/saved/1")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestSavedHandler_ListCheckRemoveClear(t *testing.T) {
	router, store := newSavedRouter(t, 5, nil)
	ctx := context.Background()
	store.Save(ctx, domain.Event{ID: "a", Name: "A"})
	store.Save(ctx, domain.Event{ID: "b", Name: "B"})

	rr := serve(router, "GET", "/api/saved")
	require.Equal(t, http.StatusOK, rr.Code)
	var list savedListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, 5, list.Capacity)
	assert.Equal(t, "a", list.Events[0].ID)
	assert.Equal(t, "b", list.Events[1].ID)

	rr = serve(router, "GET", "/api/saved/a")
	assert.JSONEq(t, `{"id":"a","saved":true}`, rr.Body.String())

	rr = serve(router, "DELETE", "/api/saved/a")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, store.IsSaved("a"))

	rr = serve(router, "DELETE", "/api/saved/a")
	assert.Equal(t, http.StatusNoContent, rr.Code, "removing an absent id is not an error")

	rr = serve(router, "GET", "/api/saved/a")
	assert.JSONEq(t, `{"id":"a","saved":false}`, rr.Body.String())

	rr = serve(router, "DELETE", "/api/saved")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, store.Len())

	rr = serve(router, "GET", "/api/saved")
	assert.JSONEq(t, `{"events":[],"count":0,"capacity":5}`, rr.Body.String())
}

type failingSlot struct{}

func (failingSlot) Load(ctx context.Context, slot string) ([]byte, error) {
	return nil, domain.ErrSlotNotFound
}

func (failingSlot) Save(ctx context.Context, slot string, data []byte) error {
	return fmt.Errorf("disk full")
}

func TestHealthHandler(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		router, _ := newSavedRouter(t, 3, nil)

		rr := serve(router, "GET", "/health")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok","saved":{"count":0,"capacity":3,"persistence":"ok"}}`, rr.Body.String())
	})

	t.Run("degraded persistence", func(t *testing.T) {
		store, err := saved.NewStore(context.Background(), failingSlot{}, saved.Options{})
		require.NoError(t, err)
		router := NewRouter(nil, NewSavedHandler(store, &mockEventService{}, nil), NewHealthHandler(store))

		require.Equal(t, http.StatusCreated, postEvent(router, `{"id":"1"}`).Code)

		rr := serve(router, "GET", "/health")
		require.Equal(t, http.StatusOK, rr.Code)

		var body healthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Status)
		require.NotNil(t, body.Saved)
		assert.Equal(t, 1, body.Saved.Count)
		assert.Equal(t, "degraded", body.Saved.Persistence)
		assert.Equal(t, "disk full", body.Saved.Error)
	})

	t.Run("without store", func(t *testing.T) {
		router := NewRouter(nil, NewHealthHandler(nil))
		rr := serve(router, "GET", "/health")
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})
}
