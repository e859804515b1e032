package api

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bankjademk11/qwen-odg/internal/model"
	"github.com/bankjademk11/qwen-odg/internal/report"
	"github.com/bankjademk11/qwen-odg/internal/store"
)

// TransfersHandler handles transfer endpoints.
type TransfersHandler struct {
	DB *sql.DB
}

// Create handles POST /api/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewTransfer
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Creator == "" {
		req.Creator = currentUser(r)
	}

	summary, err := store.CreateTransfer(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, r, err, "failed to create transfer")
		return
	}

	slog.Info("transfer created", "transfer_no", summary.TransferNo, "creator", summary.Creator,
		"from", req.WhFrom+"/"+req.LocationFrom, "to", req.WhTo+"/"+req.LocationTo,
		"lines", len(req.Details), "request_id", RequestIDFrom(r.Context()))
	jsonResponse(w, http.StatusCreated, summary)
}

// List handles GET /api/transfers.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	transfers, err := store.ListTransfers(r.Context(), h.DB, date)
	if err != nil {
		storeError(w, r, err, "failed to list transfers")
		return
	}
	if transfers == nil {
		transfers = []model.TransferSummary{}
	}
	jsonResponse(w, http.StatusOK, transfers)
}

// Get handles GET /api/transfers/{id}.
func (h *TransfersHandler) Get(w http.ResponseWriter, r *http.Request) {
	transfer, ok := h.load(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, transfer)
}

// Update handles PUT /api/transfers/{id}. Only the warehouse/location route
// is editable; a details array in the body is ignored.
func (h *TransfersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var route model.TransferRoute
	if err := decodeJSON(r, &route); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := store.UpdateTransferRoute(r.Context(), h.DB, id, currentUser(r), route); err != nil {
		storeError(w, r, err, "failed to update transfer")
		return
	}

	slog.Info("transfer updated", "transfer_no", id, "editor", currentUser(r),
		"from", route.WhFrom+"/"+route.LocationFrom, "to", route.WhTo+"/"+route.LocationTo)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Transfer updated successfully"})
}

// NextNumber handles GET /api/generate-transfer-no.
func (h *TransfersHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	no, err := store.NextTransferNo(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "failed to generate transfer number")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"transfer_no": no})
}

// Export handles GET /api/transfers/{id}/export.xlsx.
func (h *TransfersHandler) Export(w http.ResponseWriter, r *http.Request) {
	transfer, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteTransferSlip(&buf, transfer); err != nil {
		storeError(w, r, err, "failed to export transfer")
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(transfer)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

// load fetches the transfer named by the {id} path parameter, writing a 404
// or 500 itself when it cannot.
func (h *TransfersHandler) load(w http.ResponseWriter, r *http.Request) (*model.Transfer, bool) {
	transfer, err := store.GetTransfer(r.Context(), h.DB, chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, r, err, "failed to get transfer")
		return nil, false
	}
	if transfer == nil {
		jsonError(w, r, http.StatusNotFound, "Transfer not found")
		return nil, false
	}
	return transfer, true
}
