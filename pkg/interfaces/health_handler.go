package interfaces

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SavedStatus is the part of the saved store the health check reads.
type SavedStatus interface {
	Len() int
	Capacity() int
	LastPersistError() error
}

type savedHealth struct {
	Count       int    `json:"count"`
	Capacity    int    `json:"capacity"`
	Persistence string `json:"persistence"`
	Error       string `json:"error,omitempty"`
}

type healthResponse struct {
	Status string       `json:"status"`
	Saved  *savedHealth `json:"saved,omitempty"`
}

type HealthHandler struct {
	saved SavedStatus
}

func NewHealthHandler(saved SavedStatus) *HealthHandler {
	return &HealthHandler{saved: saved}
}

func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
}

// Health reports ok even when storage writes fail; the saved list keeps
// working from memory, so persistence problems only mark it degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{Status: "ok"}

	if h.saved != nil {
		saved := &savedHealth{
			Count:       h.saved.Len(),
			Capacity:    h.saved.Capacity(),
			Persistence: "ok",
		}
		if err := h.saved.LastPersistError(); err != nil {
			saved.Persistence = "degraded"
			saved.Error = err.Error()
			response.Status = "degraded"
		}
		response.Saved = saved
	}

	respondWithJSON(w, http.StatusOK, response)
}
