package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/reservation"
	"github.com/erazemk/izposoja/internal/store"
)

// ItemsPage handles GET /. It lists reservable items, optionally narrowed to
// one location.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	items, err := store.ListItems(r.Context(), s.Manager.DB, store.ItemFilter{
		Location: location,
		At:       s.Manager.Now(),
	})

	data := &struct {
		PageData
		Items    []model.Item
		Location string
	}{
		PageData: s.page("Available items"),
		Items:    items,
		Location: location,
	}
	if err != nil {
		slog.Error("failed to list items", "error", err)
		data.Error = "Items could not be loaded."
		s.Templates.Render(w, http.StatusInternalServerError, "items.html", data)
		return
	}
	s.Templates.Render(w, http.StatusOK, "items.html", data)
}

// ItemPage handles GET /items/{id}: the reservation form and the item's
// upcoming reservations.
func (s *Server) ItemPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	item, err := s.Manager.Item(r.Context(), id)
	if err != nil {
		if err == reservation.ErrItemNotFound {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	all, err := store.ListReservations(r.Context(), s.Manager.DB, id)
	if err != nil {
		slog.Error("failed to list item reservations", "item_id", id, "error", err)
	}
	now := s.Manager.Now()
	var upcoming []model.Reservation
	for _, res := range all {
		if res.End.After(now) {
			upcoming = append(upcoming, res)
		}
	}

	s.Templates.Render(w, http.StatusOK, "item.html", &struct {
		PageData
		Item     *model.Item
		Upcoming []model.Reservation
		Now      time.Time
	}{
		PageData: s.page(item.Name),
		Item:     item,
		Upcoming: upcoming,
		Now:      now,
	})
}

// ReservationsPage handles GET /reservations.
func (s *Server) ReservationsPage(w http.ResponseWriter, r *http.Request) {
	reservations, err := store.ListReservations(r.Context(), s.Manager.DB, 0)

	data := &struct {
		PageData
		Reservations []model.Reservation
	}{
		PageData:     s.page("Reservations"),
		Reservations: reservations,
	}
	if err != nil {
		slog.Error("failed to list reservations", "error", err)
		data.Error = "Reservations could not be loaded."
		s.Templates.Render(w, http.StatusInternalServerError, "reservations.html", data)
		return
	}
	s.Templates.Render(w, http.StatusOK, "reservations.html", data)
}

// ItemImageGet handles GET /items/{id}/image.
func (s *Server) ItemImageGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), s.Manager.DB, id)
	if err != nil {
		slog.Error("failed to get image", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
