package httpserver

import "net/http"

// Routes defines HTTP endpoints.
type Routes struct {
	Ingest   http.Handler
	Progress http.Handler
	Records  http.Handler
	Summary  http.Handler
	History  http.Handler
	Clients  http.Handler
	Vehicles http.Handler
	Health   http.Handler
	Metrics  http.Handler
}

// NewRouter sets up HTTP routing.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Ingest != nil {
		mux.Handle("/api/v1/ingest", method(http.MethodPost, routes.Ingest.ServeHTTP))
	}
	if routes.Progress != nil {
		mux.Handle("/api/v1/ingest/progress", method(http.MethodGet, routes.Progress.ServeHTTP))
	}
	if routes.Records != nil {
		mux.Handle("/api/v1/records", method(http.MethodGet, routes.Records.ServeHTTP))
	}
	if routes.Summary != nil {
		mux.Handle("/api/v1/fleet/summary", method(http.MethodGet, routes.Summary.ServeHTTP))
	}
	if routes.History != nil {
		mux.Handle("/api/v1/history", method(http.MethodGet, routes.History.ServeHTTP))
	}
	if routes.Clients != nil {
		mux.Handle("/api/v1/clients", method(http.MethodGet, routes.Clients.ServeHTTP))
	}
	if routes.Vehicles != nil {
		mux.Handle("/api/v1/vehicles", method(http.MethodGet, routes.Vehicles.ServeHTTP))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health.ServeHTTP))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, routes.Metrics.ServeHTTP))
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
