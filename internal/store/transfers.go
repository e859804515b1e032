package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

// prepareTransfer validates a transfer request and fills line locations
// left empty from the header route.
func prepareTransfer(in *model.NewTransfer) error {
	if in.Creator == "" {
		return invalid("creator", "is required")
	}
	route := in.Route()
	if !route.Complete() {
		return invalid("route", "wh_from, location_from, wh_to and location_to are required")
	}
	if route.SameEnds() {
		return invalid("route", "source and destination must differ")
	}
	if len(in.Details) == 0 {
		return invalid("details", "at least one item is required")
	}

	for i := range in.Details {
		d := &in.Details[i]
		if d.ItemCode == "" {
			return invalid(fmt.Sprintf("details[%d].item_code", i), "is required")
		}
		if !d.Quantity.IsPositive() {
			return invalid(fmt.Sprintf("details[%d].quantity", i), "must be positive")
		}
		if d.WhCode == "" {
			d.WhCode = in.WhFrom
		}
		if d.ShelfCode == "" {
			d.ShelfCode = in.LocationFrom
		}
		if d.WhCode2 == "" {
			d.WhCode2 = in.WhTo
		}
		if d.ShelfCode2 == "" {
			d.ShelfCode2 = in.LocationTo
		}
	}
	return nil
}

// CreateTransfer writes a transfer header and all of its lines in one
// transaction. An empty transfer number is allocated inside the transaction.
func CreateTransfer(ctx context.Context, db *sql.DB, in model.NewTransfer) (*model.TransferSummary, error) {
	if err := prepareTransfer(&in); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if in.TransferNo == "" {
		in.TransferNo, err = NextTransferNo(ctx, tx)
		if err != nil {
			return nil, err
		}
	} else {
		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM ic_trans WHERE doc_no = $1)`, in.TransferNo,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("checking transfer number: %w", err)
		}
		if exists {
			return nil, ErrDuplicateDocNo
		}
	}

	now := time.Now()
	docTime := now.Format("15:04")

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ic_trans (
		     trans_type, trans_flag, doc_date, doc_no, doc_ref, doc_ref_date,
		     branch_code, project_code, sale_code, remark, doc_time, doc_format_code,
		     wh_from, location_from, wh_to, location_to,
		     creator_code, create_datetime, last_editor_code, lastedit_datetime)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		model.TransTypeStock, model.TransFlagTransfer, now, in.TransferNo, in.Creator, now,
		model.DefaultBranchCode, in.Creator, "Web: "+in.TransferNo, docTime, model.DocFormatTransfer,
		in.WhFrom, in.LocationFrom, in.WhTo, in.LocationTo,
		in.Creator, now, in.Creator, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateDocNo
		}
		return nil, fmt.Errorf("inserting transfer header: %w", err)
	}

	for _, d := range in.Details {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ic_trans_detail (
			     trans_type, trans_flag, doc_date, doc_no, item_code, item_name, unit_code, qty,
			     branch_code, wh_code, shelf_code, wh_code_2, shelf_code_2,
			     stand_value, divide_value, doc_time, sale_code,
			     creator_code, create_datetime, last_editor_code, lastedit_datetime)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, 1, $14, $15, $16, $17, $18, $19)`,
			model.TransTypeStock, model.TransFlagTransfer, now, in.TransferNo,
			d.ItemCode, d.ItemName, d.UnitCode, d.Quantity,
			model.DefaultBranchCode, d.WhCode, d.ShelfCode, d.WhCode2, d.ShelfCode2,
			docTime, in.Creator, in.Creator, now, in.Creator, now,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting transfer line %s: %w", d.ItemCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateDocNo
		}
		return nil, fmt.Errorf("committing transfer: %w", err)
	}

	return GetTransferSummary(ctx, db, in.TransferNo)
}

// GetTransferSummary returns the creation summary of a transfer, or nil if it does not exist.
func GetTransferSummary(ctx context.Context, db *sql.DB, docNo string) (*model.TransferSummary, error) {
	s := &model.TransferSummary{}
	err := db.QueryRowContext(ctx,
		`SELECT t.doc_no,
		        COALESCE(to_char(t.create_datetime, 'YYYY-MM-DD HH24:MI:SS'), ''),
		        COALESCE(t.creator_code, ''),
		        COALESCE((SELECT SUM(d.qty) FROM ic_trans_detail d WHERE d.doc_no = t.doc_no), 0)
		 FROM ic_trans t
		 WHERE t.doc_no = $1 AND t.trans_flag = $2`,
		docNo, model.TransFlagTransfer,
	).Scan(&s.TransferNo, &s.DocDateTime, &s.Creator, &s.Quantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transfer summary: %w", err)
	}
	s.ID = s.TransferNo
	return s, nil
}

// GetTransfer returns a transfer header with its lines ordered by item code,
// or nil if it does not exist. Quantity is the sum of line quantities.
func GetTransfer(ctx context.Context, db *sql.DB, docNo string) (*model.Transfer, error) {
	t := &model.Transfer{}
	var docSuccess int
	err := db.QueryRowContext(ctx,
		`SELECT t.doc_no, to_char(t.doc_date, 'YYYY-MM-DD'), COALESCE(t.doc_time, ''),
		        COALESCE(to_char(t.create_datetime, 'YYYY-MM-DD HH24:MI:SS'), ''),
		        COALESCE(t.doc_ref, ''), COALESCE(t.branch_code, ''), COALESCE(t.remark, ''),
		        COALESCE(t.creator_code, ''), COALESCE(u.name_1, ''),
		        COALESCE(t.wh_from, ''), COALESCE(wf.name_1, ''),
		        COALESCE(t.location_from, ''), COALESCE(lf.name_1, ''),
		        COALESCE(t.wh_to, ''), COALESCE(wt.name_1, ''),
		        COALESCE(t.location_to, ''), COALESCE(lt.name_1, ''),
		        COALESCE(t.doc_success, 0)
		 FROM ic_trans t
		 LEFT JOIN erp_user u ON u.code = t.creator_code
		 LEFT JOIN ic_warehouse wf ON wf.code = t.wh_from
		 LEFT JOIN ic_shelf lf ON lf.code = t.location_from AND lf.whcode = t.wh_from
		 LEFT JOIN ic_warehouse wt ON wt.code = t.wh_to
		 LEFT JOIN ic_shelf lt ON lt.code = t.location_to AND lt.whcode = t.wh_to
		 WHERE t.doc_no = $1 AND t.trans_flag = $2`,
		docNo, model.TransFlagTransfer,
	).Scan(&t.TransferNo, &t.DocDate, &t.DocTime, &t.DocDateTime,
		&t.DocRef, &t.BranchCode, &t.Remark, &t.Creator, &t.CreatorName,
		&t.WhFrom, &t.WhFromName, &t.LocationFrom, &t.LocationFromName,
		&t.WhTo, &t.WhToName, &t.LocationTo, &t.LocationToName,
		&docSuccess)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transfer: %w", err)
	}
	t.ID = t.TransferNo
	t.Status, t.StatusName = model.TransferStatus(docSuccess)

	rows, err := db.QueryContext(ctx,
		`SELECT item_code, COALESCE(item_name, ''), COALESCE(unit_code, ''), qty,
		        COALESCE(wh_code, ''), COALESCE(shelf_code, ''),
		        COALESCE(wh_code_2, ''), COALESCE(shelf_code_2, '')
		 FROM ic_trans_detail
		 WHERE doc_no = $1 AND trans_flag = $2
		 ORDER BY item_code`,
		docNo, model.TransFlagTransfer,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transfer lines: %w", err)
	}
	defer rows.Close()

	t.Details = []model.TransferDetail{}
	for rows.Next() {
		var d model.TransferDetail
		if err := rows.Scan(&d.ItemCode, &d.ItemName, &d.UnitCode, &d.Quantity,
			&d.WhCode, &d.ShelfCode, &d.WhCode2, &d.ShelfCode2); err != nil {
			return nil, fmt.Errorf("scanning transfer line: %w", err)
		}
		t.Quantity = t.Quantity.Add(d.Quantity)
		t.Details = append(t.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing transfer lines: %w", err)
	}

	return t, nil
}

// ListTransfers returns transfer headers, newest first, optionally limited to
// one document date (YYYY-MM-DD).
func ListTransfers(ctx context.Context, db *sql.DB, date string) ([]model.TransferSummary, error) {
	query := `SELECT t.doc_no, COALESCE(to_char(t.create_datetime, 'YYYY-MM-DD HH24:MI:SS'), ''),
	                 COALESCE(t.creator_code, ''), COALESCE(u.name_1, ''),
	                 COALESCE((SELECT SUM(d.qty) FROM ic_trans_detail d WHERE d.doc_no = t.doc_no), 0),
	                 COALESCE(t.doc_success, 0),
	                 COALESCE(t.wh_from, ''), COALESCE(wf.name_1, ''),
	                 COALESCE(t.location_from, ''), COALESCE(lf.name_1, ''),
	                 COALESCE(t.wh_to, ''), COALESCE(wt.name_1, ''),
	                 COALESCE(t.location_to, ''), COALESCE(lt.name_1, '')
	          FROM ic_trans t
	          LEFT JOIN erp_user u ON u.code = t.creator_code
	          LEFT JOIN ic_warehouse wf ON wf.code = t.wh_from
	          LEFT JOIN ic_shelf lf ON lf.code = t.location_from AND lf.whcode = t.wh_from
	          LEFT JOIN ic_warehouse wt ON wt.code = t.wh_to
	          LEFT JOIN ic_shelf lt ON lt.code = t.location_to AND lt.whcode = t.wh_to
	          WHERE t.trans_flag = $1`
	args := []any{model.TransFlagTransfer}

	if date != "" {
		query += ` AND t.doc_date = $2::date`
		args = append(args, date)
	}

	query += ` ORDER BY t.create_datetime DESC, t.doc_no DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	return scanTransferSummaries(rows)
}

func scanTransferSummaries(rows *sql.Rows) ([]model.TransferSummary, error) {
	var transfers []model.TransferSummary
	for rows.Next() {
		var s model.TransferSummary
		var docSuccess int
		if err := rows.Scan(&s.TransferNo, &s.DocDateTime, &s.Creator, &s.CreatorName,
			&s.Quantity, &docSuccess,
			&s.WhFrom, &s.WhFromName, &s.LocationFrom, &s.LocationFromName,
			&s.WhTo, &s.WhToName, &s.LocationTo, &s.LocationToName); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		s.ID = s.TransferNo
		s.Status, s.StatusName = model.TransferStatus(docSuccess)
		transfers = append(transfers, s)
	}
	return transfers, rows.Err()
}

// UpdateTransferRoute rewrites the source and destination of a transfer. The
// header and the location columns of its lines change in one transaction;
// items and quantities are untouched. Returns ErrNotFound for unknown numbers.
func UpdateTransferRoute(ctx context.Context, db *sql.DB, docNo, editor string, route model.TransferRoute) error {
	if !route.Complete() {
		return invalid("route", "wh_from, location_from, wh_to and location_to are required")
	}
	if route.SameEnds() {
		return invalid("route", "source and destination must differ")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE ic_trans
		 SET wh_from = $1, location_from = $2, wh_to = $3, location_to = $4,
		     last_editor_code = $5, lastedit_datetime = CURRENT_TIMESTAMP
		 WHERE doc_no = $6 AND trans_flag = $7`,
		route.WhFrom, route.LocationFrom, route.WhTo, route.LocationTo,
		editor, docNo, model.TransFlagTransfer,
	)
	if err != nil {
		return fmt.Errorf("updating transfer header: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating transfer header: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE ic_trans_detail
		 SET wh_code = $1, shelf_code = $2, wh_code_2 = $3, shelf_code_2 = $4,
		     last_editor_code = $5, lastedit_datetime = CURRENT_TIMESTAMP
		 WHERE doc_no = $6 AND trans_flag = $7`,
		route.WhFrom, route.LocationFrom, route.WhTo, route.LocationTo,
		editor, docNo, model.TransFlagTransfer,
	)
	if err != nil {
		return fmt.Errorf("updating transfer lines: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transfer update: %w", err)
	}
	return nil
}
