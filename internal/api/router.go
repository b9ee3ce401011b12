package api

import (
	"net/http"

	"github.com/erazemk/izposoja/internal/cache"
	"github.com/erazemk/izposoja/internal/reservation"
)

// Prefix is where the JSON API is mounted.
const Prefix = "/api/v1"

// NewRouter creates the API router with all endpoints registered. c may be
// nil to disable response caching.
func NewRouter(m *reservation.Manager, c *cache.Cache) http.Handler {
	mux := http.NewServeMux()

	items := &ItemsHandler{Manager: m}
	reservations := &ReservationsHandler{Manager: m}

	// Items.
	mux.HandleFunc("GET "+Prefix+"/items", items.List)
	mux.HandleFunc("POST "+Prefix+"/items", items.Create)
	mux.HandleFunc("GET "+Prefix+"/items/{id}", items.Get)
	mux.HandleFunc("DELETE "+Prefix+"/items/{id}", items.Delete)
	mux.HandleFunc("PUT "+Prefix+"/items/{id}/availability", items.SetAvailability)
	mux.HandleFunc("PUT "+Prefix+"/items/{id}/image", items.UploadImage)
	mux.HandleFunc("GET "+Prefix+"/items/{id}/image", items.GetImage)

	// Reservations.
	mux.HandleFunc("GET "+Prefix+"/reservations", reservations.List)
	mux.HandleFunc("POST "+Prefix+"/reserve/{id}", reservations.Reserve)
	mux.HandleFunc("DELETE "+Prefix+"/reserve/{id}", reservations.Cancel)
	mux.HandleFunc("DELETE "+Prefix+"/cancel-reservation/{id}", reservations.Cancel)
	mux.HandleFunc("POST "+Prefix+"/cancel-reservation/{id}", reservations.Cancel)

	mux.HandleFunc(Prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})

	return c.Middleware(mux)
}

// Health handles GET /healthz by pinging the store.
func Health(m *reservation.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.DB.PingContext(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
