package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NextDocNo returns the next document number of the form
// <format><YYMM><nnnn> for the current month, starting at 0001. Stored
// numbers that do not follow that form are ignored.
func NextDocNo(ctx context.Context, q queryRower, format string, transFlag int) (string, error) {
	var docNo string
	err := q.QueryRowContext(ctx,
		`WITH last_doc AS (
		     SELECT max(doc_no) AS max_doc
		     FROM ic_trans
		     WHERE doc_format_code = $1
		       AND trans_flag = $2
		       AND doc_no LIKE $1 || to_char(current_date, 'YYMM') || '%'
		       AND doc_no ~ ('^' || $1 || to_char(current_date, 'YYMM') || '[0-9]{4}$')
		 )
		 SELECT CASE
		     WHEN max_doc IS NULL THEN $1 || to_char(current_date, 'YYMM') || '0001'
		     ELSE $1 || to_char(current_date, 'YYMM') || lpad((right(max_doc, 4)::int + 1)::text, 4, '0')
		 END
		 FROM last_doc`,
		format, transFlag,
	).Scan(&docNo)
	if err != nil {
		return "", fmt.Errorf("generating %s document number: %w", format, err)
	}
	return docNo, nil
}

// NextTransferNo previews the next transfer number.
func NextTransferNo(ctx context.Context, q queryRower) (string, error) {
	return NextDocNo(ctx, q, model.DocFormatTransfer, model.TransFlagTransfer)
}

// NextSaleNo previews the next POS sale number.
func NextSaleNo(ctx context.Context, q queryRower) (string, error) {
	return NextDocNo(ctx, q, model.DocFormatSale, model.TransFlagSale)
}
