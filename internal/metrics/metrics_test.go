package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "root"},
		{"/reservations", "reservations"},
		{"/static/style.css", "static"},
		{"/api/v1/items", "api/v1/items"},
		{"/api/v1/items/12/image", "api/v1/items"},
		{"/api/v1/reserve/3", "api/v1/reserve"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.path); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/teapot/1", nil))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	want := `http_requests_total{method="GET",path="api/v1/teapot",status="418"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("expected %s in exposition", want)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ReservationsCreated.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "izposoja_reservations_created_total") {
		t.Error("expected reservation counter in exposition")
	}
}
