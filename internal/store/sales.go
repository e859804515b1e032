package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

func prepareSale(in *model.NewSale) error {
	if len(in.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	if in.DocDate != "" {
		if _, err := time.Parse("2006-01-02", in.DocDate); err != nil {
			return invalid("doc_date", "must be YYYY-MM-DD")
		}
	}
	for i, it := range in.Items {
		if it.ItemCode == "" {
			return invalid(fmt.Sprintf("items[%d].item_code", i), "is required")
		}
		if !it.Qty.IsPositive() {
			return invalid(fmt.Sprintf("items[%d].qty", i), "must be positive")
		}
		if it.Price.IsNegative() {
			return invalid(fmt.Sprintf("items[%d].price", i), "must not be negative")
		}
	}
	in.Normalize()
	return nil
}

// CreateSale writes a POS sale header and its lines in one transaction and
// returns the document number. An empty number is allocated inside the transaction.
func CreateSale(ctx context.Context, db *sql.DB, in model.NewSale) (string, error) {
	if err := prepareSale(&in); err != nil {
		return "", err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if in.DocNo == "" {
		in.DocNo, err = NextSaleNo(ctx, tx)
		if err != nil {
			return "", err
		}
	}

	now := time.Now()
	docDate := any(now)
	if in.DocDate != "" {
		docDate = in.DocDate
	}
	docTime := now.Format("15:04")

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ic_trans (
		     trans_type, trans_flag, doc_date, doc_no, doc_time,
		     branch_code, project_code, sale_code, doc_format_code,
		     cust_code, amount, creator_code, create_datetime)
		 VALUES ($1, $2, $3::date, $4, $5, $6, '', $7, $8, $9, $10, $11, $12)`,
		model.TransTypeStock, model.TransFlagSale, docDate, in.DocNo, docTime,
		model.DefaultBranchCode, in.UserCode, model.DocFormatSale,
		in.CustomerCode, in.TotalAmount, in.UserCode, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateDocNo
		}
		return "", fmt.Errorf("inserting sale header: %w", err)
	}

	for _, it := range in.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ic_trans_detail (
			     trans_type, trans_flag, doc_date, doc_no, doc_time,
			     item_code, item_name, unit_code, qty, price, amount,
			     branch_code, wh_code, shelf_code, sale_code, creator_code, create_datetime)
			 VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			model.TransTypeStock, model.TransFlagSale, docDate, in.DocNo, docTime,
			it.ItemCode, it.ItemName, it.UnitCode, it.Qty, it.Price, it.Amount,
			model.DefaultBranchCode, in.WhCode, in.ShelfCode, in.UserCode, in.UserCode, now,
		)
		if err != nil {
			return "", fmt.Errorf("inserting sale line %s: %w", it.ItemCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing sale: %w", err)
	}
	return in.DocNo, nil
}

// ListRecentTransactions returns the latest document lines of any kind.
func ListRecentTransactions(ctx context.Context, db *sql.DB, limit int) ([]model.Transaction, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT item_code, COALESCE(item_name, ''), qty, COALESCE(unit_code, ''), trans_flag
		 FROM ic_trans_detail
		 ORDER BY create_datetime DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ItemCode, &t.ItemName, &t.Qty, &t.UnitCode, &t.TransFlag); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
