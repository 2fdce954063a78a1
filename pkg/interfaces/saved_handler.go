package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/yair/eventfinder/pkg/domain"
	"go.uber.org/zap"
)

const maxEventBodyBytes = 1 << 20

type savedListResponse struct {
	Events   []domain.Event `json:"events"`
	Count    int            `json:"count"`
	Capacity int            `json:"capacity"`
}

type savedStatusResponse struct {
	ID    string `json:"id"`
	Saved bool   `json:"saved"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// SavedHandler exposes the bookmarked-events store. Bookmarking by id is
// the one place where the catalog and the store meet.
type SavedHandler struct {
	store  domain.SavedEvents
	events domain.EventService
	logger *zap.Logger
}

func NewSavedHandler(store domain.SavedEvents, events domain.EventService, logger *zap.Logger) *SavedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SavedHandler{
		store:  store,
		events: events,
		logger: logger,
	}
}

func (h *SavedHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/saved", h.ListSaved).Methods("GET")
	router.HandleFunc("/api/saved", h.SaveEvent).Methods("POST")
	router.HandleFunc("/api/saved", h.ClearSaved).Methods("DELETE")
	router.HandleFunc("/api/saved/{id}", h.SaveEventByID).Methods("PUT")
	router.HandleFunc("/api/saved/{id}", h.IsSaved).Methods("GET")
	router.HandleFunc("/api/saved/{id}", h.RemoveSaved).Methods("DELETE")
}

func (h *SavedHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	events := h.store.List()
	respondWithJSON(w, http.StatusOK, savedListResponse{
		Events:   events,
		Count:    len(events),
		Capacity: h.store.Capacity(),
	})
}

func (h *SavedHandler) SaveEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.Event
	body := io.LimitReader(r.Body, maxEventBodyBytes)
	if err := json.NewDecoder(body).Decode(&event); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event payload", Reason: "invalid_argument"})
		return
	}

	h.respondWithSaveResult(w, r, h.store.Save(r.Context(), event))
}

func (h *SavedHandler) SaveEventByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]

	event, err := h.events.GetEvent(ctx, id)
	if err != nil {
		h.logger.Warn("failed to fetch event to save",
			zap.String("event_id", id),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err))
		respondWithCatalogError(w, err)
		return
	}

	h.respondWithSaveResult(w, r, h.store.Save(ctx, *event))
}

func (h *SavedHandler) IsSaved(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	respondWithJSON(w, http.StatusOK, savedStatusResponse{ID: id, Saved: h.store.IsSaved(id)})
}

func (h *SavedHandler) RemoveSaved(w http.ResponseWriter, r *http.Request) {
	h.store.Remove(r.Context(), mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *SavedHandler) ClearSaved(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *SavedHandler) respondWithSaveResult(w http.ResponseWriter, r *http.Request, result domain.SaveResult) {
	if result.Success {
		respondWithJSON(w, http.StatusCreated, saveResponse{Success: true})
		return
	}

	code, reason := saveRejectionStatus(result.Reason)
	h.logger.Info("save rejected",
		zap.String("reason", reason),
		zap.String("request_id", RequestIDFromContext(r.Context())))
	respondWithJSON(w, code, saveResponse{Message: result.Message, Reason: reason})
}

func saveRejectionStatus(reason error) (int, string) {
	switch {
	case errors.Is(reason, domain.ErrAlreadySaved):
		return http.StatusConflict, "already_saved"
	case errors.Is(reason, domain.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity, "capacity_exceeded"
	case errors.Is(reason, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	default:
		return http.StatusInternalServerError, "unknown"
	}
}
