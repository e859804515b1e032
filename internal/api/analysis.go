package api

import (
	"database/sql"
	"net/http"

	"github.com/bankjademk11/qwen-odg/internal/model"
	"github.com/bankjademk11/qwen-odg/internal/store"
)

// AnalysisHandler serves the daily stock/sales snapshot.
type AnalysisHandler struct {
	DB *sql.DB
}

// Snapshot handles GET /api/analysis-data.
func (h *AnalysisHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "doc_date")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// Bad paging falls back to the defaults; a date without sales is [] whatever the page.
	limit, offset, err := queryLimitOffset(r)
	if err != nil {
		limit, offset = defaultLimit, 0
	}

	q := model.AnalysisQuery{
		DocDate:       date,
		UserWhCode:    r.URL.Query().Get("user_wh_code"),
		CompareWhCode: r.URL.Query().Get("wh_code"),
		Limit:         limit,
		Offset:        offset,
	}
	if q.UserWhCode == "" {
		q.UserWhCode = model.DefaultUserWhCode
	}
	if q.CompareWhCode == "" {
		q.CompareWhCode = model.DefaultCompareWhCode
	}

	rows, err := store.Analysis(r.Context(), h.DB, q)
	if err != nil {
		storeError(w, r, err, "failed to load analysis")
		return
	}
	if rows == nil {
		rows = []model.AnalysisRow{}
	}
	jsonResponse(w, http.StatusOK, rows)
}
