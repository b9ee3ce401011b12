package web

import (
	"net/http"

	"github.com/erazemk/izposoja/internal/reservation"
	webembed "github.com/erazemk/izposoja/web"
)

// NewRouter creates the web page router. apiPrefix is the mount point of the
// JSON API the page scripts talk to.
func NewRouter(m *reservation.Manager, apiPrefix string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Manager:   m,
		Templates: templates,
		APIPrefix: apiPrefix,
	}

	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.ItemsPage)
	mux.HandleFunc("GET /items/{id}", s.ItemPage)
	mux.HandleFunc("GET /items/{id}/image", s.ItemImageGet)
	mux.HandleFunc("GET /reservations", s.ReservationsPage)

	return mux, nil
}
