package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

func sampleTransfer() model.NewTransfer {
	return model.NewTransfer{
		TransferNo:   "FRP1700000000",
		Creator:      "u1",
		WhFrom:       "1301",
		LocationFrom: "130101",
		WhTo:         "1302",
		LocationTo:   "130201",
		Details: []model.TransferDetail{
			{ItemCode: "A001", ItemName: "Water", UnitCode: "BTL", Quantity: decimal.NewFromInt(5)},
		},
	}
}

var (
	existsQuery     = regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM ic_trans WHERE doc_no = $1)`)
	headerInsert    = `INSERT INTO ic_trans \(`
	detailInsert    = `INSERT INTO ic_trans_detail \(`
	summaryQuery    = regexp.QuoteMeta(`COALESCE((SELECT SUM(d.qty) FROM ic_trans_detail d WHERE d.doc_no = t.doc_no), 0) FROM ic_trans t WHERE t.doc_no = $1`)
	summaryColumns  = []string{"doc_no", "doc_date_time", "creator", "quantity"}
	transferColumns = []string{
		"doc_no", "doc_date", "doc_time", "doc_date_time", "doc_ref", "branch_code", "remark",
		"creator_code", "creator_name", "wh_from", "wh_from_name", "location_from", "location_from_name",
		"wh_to", "wh_to_name", "location_to", "location_to_name", "doc_success",
	}
	detailColumns = []string{"item_code", "item_name", "unit_code", "qty", "wh_code", "shelf_code", "wh_code_2", "shelf_code_2"}
)

func TestCreateTransfer(t *testing.T) {
	db, mock := newMockDB(t)
	in := sampleTransfer()

	mock.ExpectBegin()
	mock.ExpectQuery(existsQuery).WithArgs(in.TransferNo).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(headerInsert).
		WithArgs(model.TransTypeStock, model.TransFlagTransfer, sqlmock.AnyArg(), in.TransferNo, "u1", sqlmock.AnyArg(),
			"00", "u1", "Web: FRP1700000000", sqlmock.AnyArg(), "FR",
			"1301", "130101", "1302", "130201",
			"u1", sqlmock.AnyArg(), "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Empty line locations come from the header route.
	mock.ExpectExec(detailInsert).
		WithArgs(model.TransTypeStock, model.TransFlagTransfer, sqlmock.AnyArg(), in.TransferNo,
			"A001", "Water", "BTL", decimal.NewFromInt(5),
			"00", "1301", "130101", "1302", "130201",
			sqlmock.AnyArg(), "u1", "u1", sqlmock.AnyArg(), "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(summaryQuery).WithArgs(in.TransferNo, model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows(summaryColumns).AddRow(in.TransferNo, "2026-10-19 09:30:00", "u1", "5"))

	summary, err := CreateTransfer(context.Background(), db, in)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "FRP1700000000", summary.TransferNo)
	assert.Equal(t, summary.TransferNo, summary.ID)
	assert.Equal(t, "u1", summary.Creator)
	assert.True(t, summary.Quantity.Equal(decimal.NewFromInt(5)), "quantity %s", summary.Quantity)
}

func TestCreateTransferAllocatesNumber(t *testing.T) {
	db, mock := newMockDB(t)
	in := sampleTransfer()
	in.TransferNo = ""

	mock.ExpectBegin()
	mock.ExpectQuery(`WITH last_doc AS`).WithArgs("FR", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows([]string{"doc_no"}).AddRow("FR26100007"))
	mock.ExpectExec(headerInsert).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(detailInsert).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(summaryQuery).WithArgs("FR26100007", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows(summaryColumns).AddRow("FR26100007", "2026-10-19 09:30:00", "u1", "5"))

	summary, err := CreateTransfer(context.Background(), db, in)
	require.NoError(t, err)
	assert.Equal(t, "FR26100007", summary.TransferNo)
}

func TestCreateTransferValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.NewTransfer)
	}{
		{"same ends", func(in *model.NewTransfer) { in.WhTo, in.LocationTo = in.WhFrom, in.LocationFrom }},
		{"missing creator", func(in *model.NewTransfer) { in.Creator = "" }},
		{"missing route", func(in *model.NewTransfer) { in.LocationFrom = "" }},
		{"no details", func(in *model.NewTransfer) { in.Details = nil }},
		{"zero quantity", func(in *model.NewTransfer) { in.Details[0].Quantity = decimal.Zero }},
		{"negative quantity", func(in *model.NewTransfer) { in.Details[0].Quantity = decimal.NewFromInt(-1) }},
		{"missing item", func(in *model.NewTransfer) { in.Details[0].ItemCode = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No expectations: validation must fail before any SQL.
			db, _ := newMockDB(t)
			in := sampleTransfer()
			tt.mutate(&in)

			_, err := CreateTransfer(context.Background(), db, in)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateTransferDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	in := sampleTransfer()

	mock.ExpectBegin()
	mock.ExpectQuery(existsQuery).WithArgs(in.TransferNo).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := CreateTransfer(context.Background(), db, in)
	assert.ErrorIs(t, err, ErrDuplicateDocNo)
}

func TestCreateTransferUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	in := sampleTransfer()

	mock.ExpectBegin()
	mock.ExpectQuery(existsQuery).WithArgs(in.TransferNo).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(headerInsert).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := CreateTransfer(context.Background(), db, in)
	assert.ErrorIs(t, err, ErrDuplicateDocNo)
}

func TestCreateTransferRollsBackOnLineFailure(t *testing.T) {
	db, mock := newMockDB(t)
	in := sampleTransfer()
	in.Details = append(in.Details, model.TransferDetail{ItemCode: "B002", Quantity: decimal.NewFromInt(1)})

	mock.ExpectBegin()
	mock.ExpectQuery(existsQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(headerInsert).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(detailInsert).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(detailInsert).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := CreateTransfer(context.Background(), db, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B002")
	assert.False(t, IsValidation(err))
}

func TestGetTransfer(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM ic_trans t LEFT JOIN erp_user u`).WithArgs("FR26100001", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows(transferColumns).AddRow(
			"FR26100001", "2026-10-19", "09:30", "2026-10-19 09:30:00", "u1", "00", "Web: FR26100001",
			"u1", "Somchai", "1301", "Main", "130101", "Front", "1302", "Branch", "130201", "Back", 0))
	mock.ExpectQuery(`FROM ic_trans_detail WHERE doc_no = \$1`).WithArgs("FR26100001", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows(detailColumns).
			AddRow("A001", "Water", "BTL", "2", "1301", "130101", "1302", "130201").
			AddRow("B002", "Rice", "BAG", "3.5", "1301", "130101", "1302", "130201"))

	tr, err := GetTransfer(context.Background(), db, "FR26100001")
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, "Somchai", tr.CreatorName)
	assert.Equal(t, "pending", tr.Status)
	assert.Len(t, tr.Details, 2)
	assert.True(t, tr.Quantity.Equal(decimal.RequireFromString("5.5")), "quantity %s", tr.Quantity)
}

func TestGetTransferNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM ic_trans t LEFT JOIN erp_user u`).WithArgs("nope", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows(transferColumns))

	tr, err := GetTransfer(context.Background(), db, "nope")
	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestListTransfersByDate(t *testing.T) {
	db, mock := newMockDB(t)

	cols := []string{"doc_no", "doc_date_time", "creator", "creator_name", "quantity", "doc_success",
		"wh_from", "wh_from_name", "location_from", "location_from_name",
		"wh_to", "wh_to_name", "location_to", "location_to_name"}
	mock.ExpectQuery(regexp.QuoteMeta(`AND t.doc_date = $2::date ORDER BY t.create_datetime DESC`)).
		WithArgs(model.TransFlagTransfer, "2026-10-19").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("FR26100002", "2026-10-19 10:00:00", "u1", "Somchai", "4", 1, "1301", "", "130101", "", "1302", "", "130201", "").
			AddRow("FR26100001", "2026-10-19 09:00:00", "u1", "Somchai", "5", 0, "1301", "", "130101", "", "1302", "", "130201", ""))

	list, err := ListTransfers(context.Background(), db, "2026-10-19")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "FR26100002", list[0].TransferNo)
	assert.Equal(t, "completed", list[0].Status)
	assert.Equal(t, "pending", list[1].Status)
}

func TestListTransfersWithoutDate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE t.trans_flag = $1 ORDER BY`)).
		WithArgs(model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows([]string{"doc_no"}))

	list, err := ListTransfers(context.Background(), db, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateTransferRoute(t *testing.T) {
	db, mock := newMockDB(t)
	route := model.TransferRoute{WhFrom: "1301", LocationFrom: "130101", WhTo: "1303", LocationTo: "130301"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE ic_trans SET`).
		WithArgs("1301", "130101", "1303", "130301", "u2", "FR26100001", model.TransFlagTransfer).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE ic_trans_detail SET`).
		WithArgs("1301", "130101", "1303", "130301", "u2", "FR26100001", model.TransFlagTransfer).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, UpdateTransferRoute(context.Background(), db, "FR26100001", "u2", route))
}

func TestUpdateTransferRouteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	route := model.TransferRoute{WhFrom: "1301", LocationFrom: "130101", WhTo: "1303", LocationTo: "130301"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE ic_trans SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := UpdateTransferRoute(context.Background(), db, "missing", "u2", route)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTransferRouteSameEnds(t *testing.T) {
	db, _ := newMockDB(t)
	route := model.TransferRoute{WhFrom: "1301", LocationFrom: "130101", WhTo: "1301", LocationTo: "130101"}

	err := UpdateTransferRoute(context.Background(), db, "FR26100001", "u2", route)
	assert.True(t, IsValidation(err), "expected validation error, got %v", err)
}

func TestNextTransferNo(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`WITH last_doc AS`).WithArgs("FR", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows([]string{"doc_no"}).AddRow("FR26100001"))

	no, err := NextTransferNo(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, "FR26100001", no)
}
