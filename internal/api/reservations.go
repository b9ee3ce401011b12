package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/metrics"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/reservation"
	"github.com/erazemk/izposoja/internal/store"
)

// ReservationsHandler handles reservation endpoints.
type ReservationsHandler struct {
	Manager *reservation.Manager
}

type reserveResponse struct {
	Success bool `json:"success"`
	// ReservationID is the cancellation token, named as the clients know it.
	ReservationID string             `json:"reservationId"`
	Reservation   *model.Reservation `json:"reservation"`
}

type cancelRequest struct {
	UniqueReservationID string `json:"uniqueReservationId"`
}

// List handles GET /api/v1/reservations. Tokens are never included.
func (h *ReservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	var itemID int64
	if v := r.URL.Query().Get("itemId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid itemId")
			return
		}
		itemID = id
	}

	reservations, err := store.ListReservations(r.Context(), h.Manager.DB, itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	jsonResponse(w, http.StatusOK, reservations)
}

// Reserve handles POST /api/v1/reserve/{id}, where id is the item.
func (h *ReservationsHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req reservation.Request
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Manager.Create(r.Context(), itemID, req)
	if err != nil {
		writeReservationError(w, r, err)
		return
	}

	metrics.ReservationsCreated.Inc()
	slog.Info("reservation created",
		"reservation_id", res.ID, "item_id", res.ItemID, "user", res.UserName,
		"start", res.Start, "end", res.End)
	jsonResponse(w, http.StatusOK, reserveResponse{
		Success:       true,
		ReservationID: res.Token,
		Reservation:   res,
	})
}

// Cancel handles DELETE /api/v1/reserve/{id} and the
// /api/v1/cancel-reservation/{id} form, where id is the reservation.
func (h *ReservationsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	var req cancelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Manager.Cancel(r.Context(), id, req.UniqueReservationID)
	if err != nil {
		if err == reservation.ErrTokenMismatch {
			slog.Warn("reservation cancel with wrong token", "reservation_id", id,
				"request_id", RequestID(r.Context()))
		}
		writeError(w, r, err)
		return
	}

	metrics.ReservationsCancelled.Inc()
	slog.Info("reservation cancelled", "reservation_id", res.ID, "item_id", res.ItemID, "user", res.UserName)
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}
