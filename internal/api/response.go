package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/metrics"
	"github.com/erazemk/izposoja/internal/reservation"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// statusFor maps a manager error to an HTTP status.
func statusFor(err error) int {
	switch reservation.KindOf(err) {
	case reservation.KindValidation:
		return http.StatusBadRequest
	case reservation.KindNotFound:
		return http.StatusNotFound
	case reservation.KindForbidden:
		return http.StatusForbidden
	case reservation.KindConflict:
		if err == reservation.ErrItemInUse {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. Rejections carry their reason;
// anything else is logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", RequestID(r.Context()), "error", err)
		jsonError(w, status, "internal server error")
		return
	}
	jsonError(w, status, err.Error())
}

// writeReservationError is writeError for reservation attempts; rejections
// are also counted.
func writeReservationError(w http.ResponseWriter, r *http.Request, err error) {
	if reservation.KindOf(err) != reservation.KindInternal {
		metrics.ReservationsRejected.WithLabelValues(err.Error()).Inc()
	}
	writeError(w, r, err)
}
