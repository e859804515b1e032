package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bankjademk11/qwen-odg/internal/imaging"
	"github.com/bankjademk11/qwen-odg/internal/localstore"
	"github.com/bankjademk11/qwen-odg/internal/model"
	"github.com/bankjademk11/qwen-odg/internal/store"
)

// defaultHistoryLimit is the page size of the global image history.
const defaultHistoryLimit = 100

// ImagesHandler handles product image uploads, changes and their history.
type ImagesHandler struct {
	DB             *sql.DB
	Local          *sql.DB
	MediaBaseURL   string
	MaxUploadBytes int64
}

type imageChangeRequest struct {
	ItemCode    string `json:"item_code"`
	NewImageURL string `json:"new_image_url"`
	ChangedBy   string `json:"changed_by"`
}

type imageRevertRequest struct {
	ItemCode  string `json:"item_code"`
	HistoryID int64  `json:"history_id"`
	ChangedBy string `json:"changed_by"`
}

type imageChangeResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	URL     string              `json:"url,omitempty"`
	History *model.ImageHistory `json:"history,omitempty"`
}

// changedBy picks the acting user: explicit field, then token, then the system user.
func changedBy(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if u := currentUser(r); u != "" {
		return u
	}
	return model.DefaultImageEditor
}

func (h *ImagesHandler) mediaURL(key string) string {
	return strings.TrimRight(h.MediaBaseURL, "/") + "/media/" + key
}

// Upload handles POST /api/products/images/upload. The photo is normalised,
// stored as local media and set as the product's image.
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		jsonError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	itemCode := strings.TrimSpace(r.FormValue("item_code"))
	if itemCode == "" {
		jsonError(w, r, http.StatusBadRequest, "item_code is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	photo, err := imaging.ProductPhoto(file)
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user := changedBy(r, r.FormValue("changed_by"))
	key := uuid.NewString() + ".jpg"
	if _, err := localstore.PutMedia(r.Context(), h.Local, key, photo.Data, photo.MIME, user); err != nil {
		storeError(w, r, err, "failed to store image")
		return
	}

	url := h.mediaURL(key)
	history, err := store.UpdateProductImage(r.Context(), h.DB, itemCode, url, user)
	if err != nil {
		if derr := localstore.DeleteMedia(r.Context(), h.Local, key); derr != nil {
			slog.Error("failed to remove orphaned image", "key", key, "error", derr)
		}
		storeError(w, r, err, "failed to update product image")
		return
	}

	slog.Info("product image uploaded", "item_code", itemCode, "key", key,
		"size", len(photo.Data), "width", photo.Width, "height", photo.Height, "user", user)
	jsonResponse(w, http.StatusCreated, imageChangeResponse{
		Success: true,
		Message: "Image uploaded successfully",
		URL:     url,
		History: history,
	})
}

// Media handles GET /media/{key}.
func (h *ImagesHandler) Media(w http.ResponseWriter, r *http.Request) {
	data, mime, err := localstore.GetMedia(r.Context(), h.Local, chi.URLParam(r, "key"))
	if err != nil {
		slog.Error("failed to get media", "error", err)
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
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write media response", "error", err)
	}
}

// Update handles POST /api/products/images.
func (h *ImagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req imageChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	history, err := store.UpdateProductImage(r.Context(), h.DB, req.ItemCode, req.NewImageURL, changedBy(r, req.ChangedBy))
	if err != nil {
		storeError(w, r, err, "failed to update product image")
		return
	}

	slog.Info("product image updated", "item_code", req.ItemCode, "user", history.ChangedBy)
	jsonResponse(w, http.StatusOK, imageChangeResponse{
		Success: true,
		Message: "Image updated successfully",
		History: history,
	})
}

// Revert handles POST /api/products/images/revert.
func (h *ImagesHandler) Revert(w http.ResponseWriter, r *http.Request) {
	var req imageRevertRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemCode == "" || req.HistoryID <= 0 {
		jsonError(w, r, http.StatusBadRequest, "item_code and history_id are required")
		return
	}

	history, err := store.RevertProductImage(r.Context(), h.DB, req.ItemCode, req.HistoryID, changedBy(r, req.ChangedBy))
	if err != nil {
		storeError(w, r, err, "failed to revert product image")
		return
	}

	slog.Info("product image reverted", "item_code", req.ItemCode, "history_id", req.HistoryID)
	jsonResponse(w, http.StatusOK, imageChangeResponse{
		Success: true,
		Message: "Image reverted successfully",
		History: history,
	})
}

// ProductHistory handles GET /api/products/{code}/image-history.
func (h *ImagesHandler) ProductHistory(w http.ResponseWriter, r *http.Request) {
	history, err := store.ListImageHistory(r.Context(), h.DB, chi.URLParam(r, "code"))
	if err != nil {
		storeError(w, r, err, "failed to list image history")
		return
	}
	if history == nil {
		history = []model.ImageHistory{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"history": history})
}

// AllHistory handles GET /api/products/image-history.
func (h *ImagesHandler) AllHistory(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start_date")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	end, err := queryDate(r, "end_date")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", defaultHistoryLimit, 1, maxLimit)
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	page, err := store.ListAllImageHistory(r.Context(), h.DB, model.ImageHistoryFilter{
		Search:    strings.TrimSpace(r.URL.Query().Get("search")),
		StartDate: start,
		EndDate:   end,
		Limit:     limit,
	})
	if err != nil {
		storeError(w, r, err, "failed to list image history")
		return
	}
	if page.History == nil {
		page.History = []model.ImageHistory{}
	}
	jsonResponse(w, http.StatusOK, page)
}
