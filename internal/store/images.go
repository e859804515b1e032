package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

// primaryImageLine is the product_image line shown in the catalogue.
const primaryImageLine = 1

func currentImageURL(ctx context.Context, tx *sql.Tx, itemCode string) (string, error) {
	var url string
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(url_image, '') FROM product_image WHERE ic_code = $1 AND line_number = $2`,
		itemCode, primaryImageLine,
	).Scan(&url)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting current image: %w", err)
	}
	return url, nil
}

func setImageURL(ctx context.Context, tx *sql.Tx, itemCode, url string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE product_image SET url_image = $1 WHERE ic_code = $2 AND line_number = $3`,
		url, itemCode, primaryImageLine,
	)
	if err != nil {
		return fmt.Errorf("updating product image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating product image: %w", err)
	}
	if n > 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO product_image (ic_code, line_number, url_image) VALUES ($1, $2, $3)`,
		itemCode, primaryImageLine, url,
	)
	if err != nil {
		return fmt.Errorf("inserting product image: %w", err)
	}
	return nil
}

func recordImageChange(ctx context.Context, tx *sql.Tx, itemCode, oldURL, newURL, changedBy, action string) (*model.ImageHistory, error) {
	h := &model.ImageHistory{
		ItemCode:   itemCode,
		OldURL:     oldURL,
		NewURL:     newURL,
		ChangedBy:  changedBy,
		ActionType: action,
	}
	err := tx.QueryRowContext(ctx,
		`INSERT INTO product_image_history (ic_code, old_url_image, new_url_image, changed_by, action_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, change_timestamp`,
		itemCode, oldURL, newURL, changedBy, action,
	).Scan(&h.ID, &h.ChangeTimestamp)
	if err != nil {
		return nil, fmt.Errorf("recording image history: %w", err)
	}
	return h, nil
}

// UpdateProductImage replaces a product's primary image URL and appends an
// UPDATE history entry in the same transaction.
func UpdateProductImage(ctx context.Context, db *sql.DB, itemCode, newURL, changedBy string) (*model.ImageHistory, error) {
	if itemCode == "" {
		return nil, invalid("item_code", "is required")
	}
	if newURL == "" {
		return nil, invalid("new_image_url", "is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	oldURL, err := currentImageURL(ctx, tx, itemCode)
	if err != nil {
		return nil, err
	}
	if err := setImageURL(ctx, tx, itemCode, newURL); err != nil {
		return nil, err
	}
	h, err := recordImageChange(ctx, tx, itemCode, oldURL, newURL, changedBy, model.ImageActionUpdate)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing image update: %w", err)
	}
	return h, nil
}

// RevertProductImage restores the URL a history entry replaced and appends a
// REVERT entry. Returns ErrNotFound when the entry does not belong to itemCode.
func RevertProductImage(ctx context.Context, db *sql.DB, itemCode string, historyID int64, changedBy string) (*model.ImageHistory, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var target string
	err = tx.QueryRowContext(ctx,
		`SELECT old_url_image FROM product_image_history WHERE id = $1 AND ic_code = $2`,
		historyID, itemCode,
	).Scan(&target)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting image history entry: %w", err)
	}

	current, err := currentImageURL(ctx, tx, itemCode)
	if err != nil {
		return nil, err
	}
	if err := setImageURL(ctx, tx, itemCode, target); err != nil {
		return nil, err
	}
	h, err := recordImageChange(ctx, tx, itemCode, current, target, changedBy, model.ImageActionRevert)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing image revert: %w", err)
	}
	return h, nil
}

const imageHistoryColumns = `h.id, h.ic_code, COALESCE(i.name_1, ''), h.old_url_image, h.new_url_image,
	h.changed_by, h.change_timestamp, h.action_type`

func scanImageHistory(rows *sql.Rows) ([]model.ImageHistory, error) {
	var history []model.ImageHistory
	for rows.Next() {
		var h model.ImageHistory
		if err := rows.Scan(&h.ID, &h.ItemCode, &h.ItemName, &h.OldURL, &h.NewURL,
			&h.ChangedBy, &h.ChangeTimestamp, &h.ActionType); err != nil {
			return nil, fmt.Errorf("scanning image history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// ListImageHistory returns one product's image changes, newest first.
func ListImageHistory(ctx context.Context, db *sql.DB, itemCode string) ([]model.ImageHistory, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+imageHistoryColumns+`
		 FROM product_image_history h
		 LEFT JOIN ic_inventory i ON i.code = h.ic_code
		 WHERE h.ic_code = $1
		 ORDER BY h.change_timestamp DESC, h.id DESC`, itemCode,
	)
	if err != nil {
		return nil, fmt.Errorf("listing image history: %w", err)
	}
	defer rows.Close()

	return scanImageHistory(rows)
}

// ListAllImageHistory returns image changes across products, newest first,
// with the total number of matching entries and distinct products.
// Dates are inclusive YYYY-MM-DD bounds.
func ListAllImageHistory(ctx context.Context, db *sql.DB, f model.ImageHistoryFilter) (*model.ImageHistoryPage, error) {
	where := ` WHERE 1=1`
	var args []any

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND (h.ic_code ILIKE $%d OR i.name_1 ILIKE $%d OR h.changed_by ILIKE $%d)`,
			len(args), len(args), len(args))
	}
	if f.StartDate != "" {
		args = append(args, f.StartDate)
		where += fmt.Sprintf(` AND h.change_timestamp >= $%d::date`, len(args))
	}
	if f.EndDate != "" {
		args = append(args, f.EndDate)
		where += fmt.Sprintf(` AND h.change_timestamp < $%d::date + 1`, len(args))
	}

	from := ` FROM product_image_history h LEFT JOIN ic_inventory i ON i.code = h.ic_code`

	page := &model.ImageHistoryPage{}
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT h.ic_code)`+from+where, args...,
	).Scan(&page.TotalCount, &page.UniqueProductCount)
	if err != nil {
		return nil, fmt.Errorf("counting image history: %w", err)
	}

	listArgs := append(args, f.Limit)
	rows, err := db.QueryContext(ctx,
		`SELECT `+imageHistoryColumns+from+where+
			fmt.Sprintf(` ORDER BY h.change_timestamp DESC, h.id DESC LIMIT $%d`, len(listArgs)),
		listArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing image history: %w", err)
	}
	defer rows.Close()

	page.History, err = scanImageHistory(rows)
	if err != nil {
		return nil, err
	}
	if page.History == nil {
		page.History = []model.ImageHistory{}
	}
	return page, nil
}
