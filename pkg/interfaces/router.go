package interfaces

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// NewRouter mounts the handlers behind the request id, access log and panic
// recovery middleware. Unmatched requests get the same chain, since mux only
// applies Use middleware to matched routes.
func NewRouter(logger *zap.Logger, handlers ...RouteRegistrar) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	middleware := []mux.MiddlewareFunc{RequestID, AccessLog(logger), Recover(logger)}

	router := mux.NewRouter()
	router.Use(middleware...)
	router.NotFoundHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "not found")
	}), middleware)
	router.MethodNotAllowedHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	}), middleware)

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	return router
}

// wrap applies middleware in the order mux.Router.Use would.
func wrap(h http.Handler, middleware []mux.MiddlewareFunc) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
