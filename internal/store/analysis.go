package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

// Analysis returns the daily stock/sales snapshot for q.DocDate (today when
// empty): every item with a positive opening balance at the user's warehouse
// location on the previous day, that day's sales there, and the balances at
// the user's and the comparison location as of that date. A date without
// sales yields an empty result.
func Analysis(ctx context.Context, db *sql.DB, q model.AnalysisQuery) ([]model.AnalysisRow, error) {
	var docDate any
	if q.DocDate != "" {
		docDate = q.DocDate
	}

	var hasSales bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM ic_trans_detail
		     WHERE doc_date = COALESCE($1::date, CURRENT_DATE) AND trans_flag = $2)`,
		docDate, model.TransFlagSale,
	).Scan(&hasSales)
	if err != nil {
		return nil, fmt.Errorf("checking sales for date: %w", err)
	}
	if !hasSales {
		return nil, nil
	}

	userLoc := model.LocationCodeFor(q.UserWhCode)
	compareLoc := model.LocationCodeFor(q.CompareWhCode)

	rows, err := db.QueryContext(ctx,
		`WITH params AS (
		     SELECT COALESCE($1::date, CURRENT_DATE) AS doc_date
		 ),
		 opening AS (
		     SELECT s.ic_code, s.ic_name, s.ic_unit_code, s.balance_qty
		     FROM params p,
		          sml_ic_function_stock_balance_warehouse_location(p.doc_date - 1, '', $2::varchar, $3::varchar) s
		     WHERE s.balance_qty > 0
		 ),
		 sales AS (
		     SELECT d.item_code, SUM(d.qty) AS sale_qty
		     FROM ic_trans_detail d, params p
		     WHERE d.trans_flag = $4 AND d.doc_date = p.doc_date AND d.wh_code = $2::varchar
		     GROUP BY d.item_code
		 ),
		 current_user_wh AS (
		     SELECT s.ic_code, s.balance_qty
		     FROM params p,
		          sml_ic_function_stock_balance_warehouse_location(p.doc_date, '', $2::varchar, $3::varchar) s
		 ),
		 current_compare_wh AS (
		     SELECT s.ic_code, s.balance_qty
		     FROM params p,
		          sml_ic_function_stock_balance_warehouse_location(p.doc_date, '', $5::varchar, $6::varchar) s
		 )
		 SELECT to_char(p.doc_date, 'YYYY-MM-DD'), o.ic_code, COALESCE(o.ic_name, ''),
		        COALESCE(o.ic_unit_code, ''), ROUND(o.balance_qty, 2),
		        COALESCE(sa.sale_qty, 0), ROUND(COALESCE(cu.balance_qty, 0), 2),
		        ROUND(COALESCE(cc.balance_qty, 0), 2)
		 FROM opening o
		 CROSS JOIN params p
		 LEFT JOIN sales sa ON sa.item_code = o.ic_code
		 LEFT JOIN current_user_wh cu ON cu.ic_code = o.ic_code
		 LEFT JOIN current_compare_wh cc ON cc.ic_code = o.ic_code
		 ORDER BY o.ic_code
		 LIMIT $7 OFFSET $8`,
		docDate, q.UserWhCode, userLoc, model.TransFlagSale, q.CompareWhCode,
		compareLoc, q.Limit, q.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}
	defer rows.Close()

	var out []model.AnalysisRow
	for rows.Next() {
		var r model.AnalysisRow
		if err := rows.Scan(&r.DocDate, &r.ItemCode, &r.ItemName, &r.UnitCode,
			&r.BalanceQtyStart, &r.SaleQty, &r.BalanceQty, &r.BalanceQtyCompare); err != nil {
			return nil, fmt.Errorf("scanning analysis row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
