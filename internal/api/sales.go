package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/bankjademk11/qwen-odg/internal/model"
	"github.com/bankjademk11/qwen-odg/internal/store"
)

// recentTransactions is the number of lines shown by GET /api/transactions.
const recentTransactions = 20

// SalesHandler handles POS checkout endpoints.
type SalesHandler struct {
	DB *sql.DB
}

type createSaleResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	DocNo   string `json:"doc_no"`
}

// Create handles POST /api/sales.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewSale
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserCode == "" {
		req.UserCode = currentUser(r)
	}

	docNo, err := store.CreateSale(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, r, err, "failed to create sale")
		return
	}

	slog.Info("sale created", "doc_no", docNo, "customer", req.CustomerCode,
		"lines", len(req.Items), "request_id", RequestIDFrom(r.Context()))
	jsonResponse(w, http.StatusCreated, createSaleResponse{
		Success: true,
		Message: "Sale saved successfully",
		DocNo:   docNo,
	})
}

// NextNumber handles GET /api/generate-sale-no.
func (h *SalesHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	no, err := store.NextSaleNo(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "failed to generate sale number")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"doc_no": no})
}

// Transactions handles GET /api/transactions.
func (h *SalesHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	lines, err := store.ListRecentTransactions(r.Context(), h.DB, recentTransactions)
	if err != nil {
		storeError(w, r, err, "failed to list transactions")
		return
	}
	if lines == nil {
		lines = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, lines)
}
