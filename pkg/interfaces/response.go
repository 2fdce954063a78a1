package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/yair/eventfinder/pkg/domain"
)

// Catalog responses may be shared by caches for an hour and served stale
// for a day while they revalidate.
const catalogCacheControl = "public, s-maxage=3600, stale-while-revalidate=86400"

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithCatalogError maps catalog failures onto statuses so that a
// missing event, a broken upstream and an unreachable upstream stay
// distinguishable to clients.
func respondWithCatalogError(w http.ResponseWriter, err error) {
	code, message := catalogErrorStatus(err)
	if code == http.StatusBadRequest {
		respondWithJSON(w, code, errorResponse{Error: message, Reason: "invalid_argument"})
		return
	}
	respondWithError(w, code, message)
}

func catalogErrorStatus(err error) (int, string) {
	var validation domain.ValidationError
	var upstream *domain.UpstreamError
	var transport *domain.TransportError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound, "event not found"
	case isTimeout(err):
		return http.StatusGatewayTimeout, "upstream request timed out"
	case errors.As(err, &transport):
		return http.StatusServiceUnavailable, "event service unavailable"
	case errors.As(err, &upstream), errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway, "failed to fetch event"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
