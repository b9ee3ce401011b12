package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/reservation"
	"github.com/erazemk/izposoja/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Manager *reservation.Manager
}

type createItemRequest struct {
	ItemName  string `json:"itemName"`
	Location  string `json:"location"`
	Available *bool  `json:"available"`
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

// List handles GET /api/v1/items. Only reservable items are listed unless
// all=1 is given.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := store.ListItems(r.Context(), h.Manager.DB, store.ItemFilter{
		Location:           q.Get("location"),
		IncludeUnavailable: q.Get("all") == "1",
		At:                 h.Manager.Now(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/v1/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.ItemName)
	location := strings.TrimSpace(req.Location)
	if name == "" || location == "" || req.Available == nil {
		jsonError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	item, err := h.Manager.CreateItem(r.Context(), name, location, *req.Available)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item created", "item_id", item.ID, "name", item.Name, "location", item.Location)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/v1/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Manager.Item(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/v1/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Manager.DeleteItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item deleted", "item_id", item.ID, "name", item.Name)
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// SetAvailability handles PUT /api/v1/items/{id}/availability.
func (h *ItemsHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil || req.Available == nil {
		jsonError(w, http.StatusBadRequest, "available required")
		return
	}

	item, err := h.Manager.SetAvailable(r.Context(), id, *req.Available)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item availability changed", "item_id", item.ID, "available", item.Available)
	jsonResponse(w, http.StatusOK, item)
}

// UploadImage handles PUT /api/v1/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.Manager.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		writeError(w, r, reservation.ErrItemNotFound)
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), h.Manager.DB, id, result.Data, result.MIME); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item image uploaded", "item_id", id, "bytes", len(result.Data))
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// GetImage handles GET /api/v1/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.Manager.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
