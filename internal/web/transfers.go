package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bankjademk11/qwen-odg/internal/model"
	"github.com/bankjademk11/qwen-odg/internal/store"
)

// TransferPrint handles GET /transfers/{id}/print.
func (s *Server) TransferPrint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	transfer, err := store.GetTransfer(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to load transfer for printing", "transfer_no", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if transfer == nil {
		s.Templates.Render(w, http.StatusNotFound, "not_found.html", &struct {
			PageData
			TransferNo string
		}{
			PageData:   PageData{Title: "ບໍ່ພົບໃບໂອນ"},
			TransferNo: id,
		})
		return
	}

	s.Templates.Render(w, http.StatusOK, "transfer_print.html", &struct {
		PageData
		Transfer *model.Transfer
	}{
		PageData: PageData{Title: "ໃບໂອນສິນຄ້າ " + transfer.TransferNo},
		Transfer: transfer,
	})
}
