package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bankjademk11/qwen-odg/internal/store"
)

// Query limits shared by paginated endpoints.
const (
	defaultLimit = 20
	maxLimit     = 500
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

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

// jsonError writes a JSON error carrying the request id.
func jsonError(w http.ResponseWriter, r *http.Request, status int, message string) {
	jsonResponse(w, status, errorResponse{Error: message, RequestID: RequestIDFrom(r.Context())})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps a store failure onto an HTTP status. Unexpected errors are
// logged with the request id and reported as a generic 500.
func storeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, r, http.StatusBadRequest, ve.Error())
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateDocNo):
		jsonError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled):
		slog.Info("request cancelled", "action", action, "request_id", RequestIDFrom(r.Context()))
	default:
		slog.Error(action, "error", err, "request_id", RequestIDFrom(r.Context()))
		jsonError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// queryInt parses an optional integer query parameter within [lo, hi].
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, lo, hi)
	}
	return n, nil
}

// queryLimitOffset reads limit (default 20, 1..500) and offset (default 0).
func queryLimitOffset(r *http.Request) (limit, offset int, err error) {
	if limit, err = queryInt(r, "limit", defaultLimit, 1, maxLimit); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(r, "offset", 0, 0, 1<<31-1); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// queryDate returns an optional YYYY-MM-DD query parameter, validated.
func queryDate(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return "", fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return v, nil
}
