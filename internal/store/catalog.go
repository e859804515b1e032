package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

// stockAsOf is the date passed to the stock-balance function for current stock.
const stockAsOf = "2099-12-31"

// hiddenCategory is the free-gift category, never offered in the POS catalogue.
const hiddenCategory = "ຂອງແຖມ"

func listCodeNames(ctx context.Context, db *sql.DB, what, query string, args ...any) ([]model.CodeName, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}
	defer rows.Close()

	var out []model.CodeName
	for rows.Next() {
		var c model.CodeName
		if err := rows.Scan(&c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", what, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListWarehouses returns all warehouses ordered by code.
func ListWarehouses(ctx context.Context, db *sql.DB) ([]model.CodeName, error) {
	return listCodeNames(ctx, db, "warehouses",
		`SELECT code, COALESCE(name_1, '') FROM ic_warehouse ORDER BY code`)
}

// ListLocations returns the shelves of one warehouse ordered by code.
func ListLocations(ctx context.Context, db *sql.DB, warehouse string) ([]model.CodeName, error) {
	return listCodeNames(ctx, db, "locations",
		`SELECT code, COALESCE(name_1, '') FROM ic_shelf WHERE whcode = $1 ORDER BY code`, warehouse)
}

// ListCustomers returns all customers ordered by name.
func ListCustomers(ctx context.Context, db *sql.DB) ([]model.CodeName, error) {
	return listCodeNames(ctx, db, "customers",
		`SELECT code, COALESCE(name_1, '') FROM ar_customer ORDER BY name_1`)
}

// ListUnits returns the distinct unit codes of the item master.
func ListUnits(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT unit_code_1 FROM ic_master
		 WHERE unit_code_1 IS NOT NULL AND unit_code_1 <> ''
		 ORDER BY unit_code_1`)
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	defer rows.Close()

	var units []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// ListCategories returns the categories with in-stock items at a location.
func ListCategories(ctx context.Context, db *sql.DB, wh, location string) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT COALESCE(f.code, ''), f.name_1, COUNT(a.ic_code)
		 FROM sml_ic_function_stock_balance_warehouse_location($1::date, '', $2, $3) a
		 JOIN ic_inventory b ON b.code = a.ic_code
		 JOIN ic_category f ON f.code = b.item_category
		 WHERE a.balance_qty > 0 AND f.name_1 <> $4
		 GROUP BY f.code, f.name_1
		 ORDER BY f.name_1`,
		stockAsOf, wh, location, hiddenCategory,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.Code, &c.Name, &c.ItemCount); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// productColumns selects a model.Product from a stock-balance row aliased a
// joined to ic_inventory b.
const productColumns = `a.ic_code, COALESCE(b.name_1, a.ic_name, ''), COALESCE(a.ic_unit_code, ''),
	COALESCE(b.item_category, ''),
	COALESCE((SELECT bc.barcode FROM ic_inventory_barcode bc WHERE bc.ic_code = a.ic_code LIMIT 1), ''),
	COALESCE((SELECT p.sale_price1 FROM ic_inventory_price p
	          WHERE current_date BETWEEN p.from_date AND p.to_date
	            AND p.currency_code = '02' AND p.cust_group_1 = '101'
	            AND p.ic_code = a.ic_code AND p.unit_code = a.ic_unit_code
	          ORDER BY p.roworder DESC LIMIT 1), 0),
	a.balance_qty,
	COALESCE((SELECT i.url_image FROM product_image i WHERE i.ic_code = a.ic_code AND i.line_number = 1), '')`

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.Code, &p.Name, &p.UnitCode, &p.Category, &p.Barcode,
			&p.Price, &p.BalanceQty, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListProducts returns in-stock products at a location, optionally filtered
// by category name and a case-insensitive name/code search.
func ListProducts(ctx context.Context, db *sql.DB, f model.ProductFilter) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
	          FROM sml_ic_function_stock_balance_warehouse_location($1::date, '', $2, $3) a
	          LEFT JOIN ic_inventory b ON b.code = a.ic_code
	          LEFT JOIN ic_category c ON c.code = b.item_category
	          WHERE a.balance_qty > 0`
	args := []any{stockAsOf, f.WhCode, f.Location}

	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(` AND c.name_1 = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(` AND (b.name_1 ILIKE $%d OR a.ic_code ILIKE $%d)`, len(args), len(args))
	}

	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY COALESCE(b.name_1, a.ic_name), a.ic_code LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// CheckPrice finds the first in-stock product at a location whose barcode
// equals search or whose name or code contains it. Returns nil when nothing matches.
func CheckPrice(ctx context.Context, db *sql.DB, wh, location, search string) (*model.Product, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM sml_ic_function_stock_balance_warehouse_location($1::date, '', $2, $3) a
		 LEFT JOIN ic_inventory b ON b.code = a.ic_code
		 WHERE a.balance_qty > 0
		   AND (EXISTS (SELECT 1 FROM ic_inventory_barcode x WHERE x.ic_code = a.ic_code AND x.barcode = $4)
		        OR a.ic_name ILIKE $5 OR a.ic_code ILIKE $5)
		 ORDER BY a.ic_code
		 LIMIT 1`,
		stockAsOf, wh, location, search, "%"+search+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("checking price: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}
