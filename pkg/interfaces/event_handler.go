package interfaces

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/yair/eventfinder/pkg/domain"
	"go.uber.org/zap"
)

type EventHandler struct {
	service domain.EventService
	logger  *zap.Logger
	now     func() time.Time
}

func NewEventHandler(service domain.EventService, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *EventHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/events", h.SearchEvents).Methods("GET")
	router.HandleFunc("/api/events/popular", h.PopularEvents).Methods("GET")
	router.HandleFunc("/api/events/{id}", h.GetEvent).Methods("GET")
}

func (h *EventHandler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	params := r.URL.Query()
	query := domain.SearchQuery{
		Keyword:            params.Get("keyword"),
		City:               params.Get("city"),
		ClassificationName: params.Get("classificationName"),
		StartDateTime:      params.Get("startDateTime"),
		EndDateTime:        params.Get("endDateTime"),
	}

	var err error
	if query.Page, err = intParam(params.Get("page")); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "page must be an integer", Reason: "invalid_argument"})
		return
	}
	if query.Size, err = intParam(params.Get("size")); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "size must be an integer", Reason: "invalid_argument"})
		return
	}

	result, err := h.service.SearchEvents(ctx, query)
	if err != nil {
		h.logFailure(r, "search events", err)
		respondWithCatalogError(w, err)
		return
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	respondWithJSON(w, http.StatusOK, domain.NewPageView(result, h.now()))
}

func (h *EventHandler) PopularEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.PopularEvents(ctx)
	if err != nil {
		h.logFailure(r, "popular events", err)
		respondWithCatalogError(w, err)
		return
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	respondWithJSON(w, http.StatusOK, domain.NewPageView(result, h.now()))
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	id := vars["id"]

	event, err := h.service.GetEvent(ctx, id)
	if err != nil {
		h.logFailure(r, "get event", err, zap.String("event_id", id))
		respondWithCatalogError(w, err)
		return
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	respondWithJSON(w, http.StatusOK, domain.NewEventView(*event, h.now()))
}

func (h *EventHandler) logFailure(r *http.Request, op string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("op", op),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err))
	h.logger.Warn("catalog request failed", fields...)
}

func intParam(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
