package httpserver

import (
	"net/http"
)

// Routes aggregates handlers for HTTP server. Nil routes are not mounted.
type Routes struct {
	Health  http.HandlerFunc
	Metrics http.Handler
	Drivers http.HandlerFunc
	Export  http.HandlerFunc
	Feed    http.HandlerFunc
	// Auth guards every /admin route.
	Auth func(http.Handler) http.Handler
}

// NewRouter wires all HTTP routes.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", routes.Metrics)
	}
	if routes.Auth == nil {
		return mux
	}
	if routes.Drivers != nil {
		mux.Handle("/admin/drivers", routes.Auth(method(http.MethodGet, routes.Drivers)))
	}
	if routes.Export != nil {
		mux.Handle("/admin/events.csv", routes.Auth(method(http.MethodGet, routes.Export)))
	}
	if routes.Feed != nil {
		mux.Handle("/admin/feed", routes.Auth(method(http.MethodGet, routes.Feed)))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
