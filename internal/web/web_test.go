package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

var (
	headerColumns = []string{
		"doc_no", "doc_date", "doc_time", "doc_date_time", "doc_ref", "branch_code", "remark",
		"creator_code", "creator_name", "wh_from", "wh_from_name", "location_from", "location_from_name",
		"wh_to", "wh_to_name", "location_to", "location_to_name", "doc_success",
	}
	lineColumns = []string{"item_code", "item_name", "unit_code", "qty", "wh_code", "shelf_code", "wh_code_2", "shelf_code_2"}
)

func setupPages(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})

	h, err := NewRouter(db)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return h, mock
}

func get(h http.Handler, path string) (*http.Response, string) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestLoadTemplates(t *testing.T) {
	if _, err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
}

func TestTransferPrint(t *testing.T) {
	h, mock := setupPages(t)

	mock.ExpectQuery(`FROM ic_trans t`).WithArgs("FR26100001", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows(headerColumns).AddRow(
			"FR26100001", "2026-10-19", "09:30", "2026-10-19 09:30:00", "u1", "00", "Web: FR26100001",
			"u1", "Somchai", "1301", "Main", "130101", "Front", "1302", "Branch", "130201", "Back", 1))
	mock.ExpectQuery(`FROM ic_trans_detail`).WithArgs("FR26100001", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows(lineColumns).
			AddRow("A001", "Water <1L>", "BTL", "2", "1301", "130101", "1302", "130201").
			AddRow("B002", "Rice", "BAG", "3.5", "1301", "130101", "1302", "130201"))

	resp, body := get(h, "/transfers/FR26100001/print")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML, got %q", ct)
	}
	for _, want := range []string{"FR26100001", "1301 · Main", "Water &lt;1L&gt;", "5.5", "status-completed"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestTransferPrintNotFound(t *testing.T) {
	h, mock := setupPages(t)

	mock.ExpectQuery(`FROM ic_trans t`).WithArgs("nope", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows(headerColumns))

	resp, body := get(h, "/transfers/nope/print")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "nope") {
		t.Error("expected the missing number in the page")
	}
}

func TestStaticAssets(t *testing.T) {
	h, _ := setupPages(t)

	resp, body := get(h, "/static/print.css")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "@media print") {
		t.Error("expected print stylesheet")
	}
}
