package db

import (
	"context"
	"database/sql"
	"fmt"
)

// erpSchema is the subset of the ERP schema this service reads and writes.
// Production databases already have these objects; the statements only
// create what is missing, for development and integration tests.
var erpSchema = []string{
	`CREATE TABLE IF NOT EXISTS erp_user (
		code     varchar(25) PRIMARY KEY,
		name_1   varchar(255) NOT NULL DEFAULT '',
		password varchar(255) NOT NULL DEFAULT '',
		ic_wht   varchar(25) NOT NULL DEFAULT '',
		ic_shelf varchar(25) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ic_warehouse (
		code   varchar(25) PRIMARY KEY,
		name_1 varchar(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ic_shelf (
		code   varchar(25) NOT NULL,
		whcode varchar(25) NOT NULL,
		name_1 varchar(255) NOT NULL DEFAULT '',
		PRIMARY KEY (code, whcode)
	)`,
	`CREATE TABLE IF NOT EXISTS ar_customer (
		code   varchar(25) PRIMARY KEY,
		name_1 varchar(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ic_category (
		code   varchar(25) PRIMARY KEY,
		name_1 varchar(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ic_master (
		code        varchar(25) PRIMARY KEY,
		name_1      varchar(255) NOT NULL DEFAULT '',
		unit_code_1 varchar(25) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ic_inventory (
		code          varchar(25) PRIMARY KEY,
		name_1        varchar(255) NOT NULL DEFAULT '',
		item_category varchar(25) NOT NULL DEFAULT '',
		unit_standard varchar(25) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ic_inventory_barcode (
		ic_code varchar(25) NOT NULL,
		barcode varchar(50) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ic_inventory_price (
		roworder      serial PRIMARY KEY,
		ic_code       varchar(25) NOT NULL,
		unit_code     varchar(25) NOT NULL DEFAULT '',
		from_date     date NOT NULL,
		to_date       date NOT NULL,
		sale_price1   numeric NOT NULL DEFAULT 0,
		currency_code varchar(10) NOT NULL DEFAULT '02',
		cust_group_1  varchar(25) NOT NULL DEFAULT '101'
	)`,
	`CREATE TABLE IF NOT EXISTS product_image (
		ic_code     varchar(25) NOT NULL,
		line_number integer NOT NULL DEFAULT 1,
		url_image   text NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS product_image_history (
		id               bigserial PRIMARY KEY,
		ic_code          varchar(25) NOT NULL,
		old_url_image    text NOT NULL DEFAULT '',
		new_url_image    text NOT NULL DEFAULT '',
		changed_by       varchar(25) NOT NULL DEFAULT '',
		change_timestamp timestamptz NOT NULL DEFAULT now(),
		action_type      varchar(10) NOT NULL CHECK (action_type IN ('UPDATE', 'REVERT'))
	)`,
	`CREATE INDEX IF NOT EXISTS product_image_history_ic_code_idx ON product_image_history (ic_code)`,
	`CREATE TABLE IF NOT EXISTS ic_trans (
		roworder          serial PRIMARY KEY,
		trans_type        smallint NOT NULL,
		trans_flag        smallint NOT NULL,
		doc_date          date NOT NULL,
		doc_time          varchar(8) NOT NULL DEFAULT '',
		doc_no            varchar(25) NOT NULL,
		doc_ref           varchar(100) NOT NULL DEFAULT '',
		doc_ref_date      date,
		doc_format_code   varchar(25) NOT NULL DEFAULT '',
		branch_code       varchar(25) NOT NULL DEFAULT '',
		project_code      varchar(25) NOT NULL DEFAULT '',
		sale_code         varchar(25) NOT NULL DEFAULT '',
		remark            varchar(255) NOT NULL DEFAULT '',
		wh_from           varchar(25) NOT NULL DEFAULT '',
		location_from     varchar(25) NOT NULL DEFAULT '',
		wh_to             varchar(25) NOT NULL DEFAULT '',
		location_to       varchar(25) NOT NULL DEFAULT '',
		cust_code         varchar(25) NOT NULL DEFAULT '',
		amount            numeric NOT NULL DEFAULT 0,
		doc_success       smallint NOT NULL DEFAULT 0,
		creator_code      varchar(25) NOT NULL DEFAULT '',
		create_datetime   timestamp NOT NULL DEFAULT now(),
		last_editor_code  varchar(25) NOT NULL DEFAULT '',
		lastedit_datetime timestamp
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ic_trans_doc_no_uq ON ic_trans (doc_no)`,
	`CREATE TABLE IF NOT EXISTS ic_trans_detail (
		roworder          serial PRIMARY KEY,
		trans_type        smallint NOT NULL,
		trans_flag        smallint NOT NULL,
		doc_date          date NOT NULL,
		doc_time          varchar(8) NOT NULL DEFAULT '',
		doc_no            varchar(25) NOT NULL,
		item_code         varchar(25) NOT NULL,
		item_name         varchar(255) NOT NULL DEFAULT '',
		unit_code         varchar(25) NOT NULL DEFAULT '',
		qty               numeric NOT NULL,
		price             numeric NOT NULL DEFAULT 0,
		amount            numeric NOT NULL DEFAULT 0,
		branch_code       varchar(25) NOT NULL DEFAULT '',
		wh_code           varchar(25) NOT NULL DEFAULT '',
		shelf_code        varchar(25) NOT NULL DEFAULT '',
		wh_code_2         varchar(25) NOT NULL DEFAULT '',
		shelf_code_2      varchar(25) NOT NULL DEFAULT '',
		stand_value       numeric NOT NULL DEFAULT 1,
		divide_value      numeric NOT NULL DEFAULT 1,
		sale_code         varchar(25) NOT NULL DEFAULT '',
		creator_code      varchar(25) NOT NULL DEFAULT '',
		create_datetime   timestamp NOT NULL DEFAULT now(),
		last_editor_code  varchar(25) NOT NULL DEFAULT '',
		lastedit_datetime timestamp
	)`,
	`CREATE INDEX IF NOT EXISTS ic_trans_detail_doc_no_idx ON ic_trans_detail (doc_no)`,
	`CREATE INDEX IF NOT EXISTS ic_trans_detail_doc_date_idx ON ic_trans_detail (doc_date, trans_flag)`,
	// Development stand-in for the ERP stock-balance function: receipts (flag 12)
	// and transfers in add, sales and transfers out subtract. Never replaces an
	// existing definition.
	`DO $do$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_proc WHERE proname = 'sml_ic_function_stock_balance_warehouse_location') THEN
			EXECUTE $fn$
			CREATE FUNCTION sml_ic_function_stock_balance_warehouse_location(
				p_date date, p_item varchar, p_wh varchar, p_shelf varchar)
			RETURNS TABLE (ic_code text, ic_name text, ic_unit_code text,
				warehouse text, location text, balance_qty numeric)
			LANGUAGE sql STABLE AS $body$
				SELECT m.item_code::text, max(m.item_name)::text, max(m.unit_code)::text,
					p_wh::text, p_shelf::text, sum(m.qty)
				FROM (
					SELECT d.item_code, d.item_name, d.unit_code, d.qty
					FROM ic_trans_detail d
					WHERE d.doc_date <= p_date
					  AND ((d.trans_flag = 12 AND d.wh_code = p_wh AND d.shelf_code = p_shelf)
					    OR (d.trans_flag = 124 AND d.wh_code_2 = p_wh AND d.shelf_code_2 = p_shelf))
					UNION ALL
					SELECT d.item_code, d.item_name, d.unit_code, -d.qty
					FROM ic_trans_detail d
					WHERE d.doc_date <= p_date
					  AND d.trans_flag IN (44, 124) AND d.wh_code = p_wh AND d.shelf_code = p_shelf
				) m
				WHERE p_item = '' OR m.item_code = p_item
				GROUP BY m.item_code
			$body$
			$fn$;
		END IF;
	END
	$do$`,
}

// EnsureERPSchema creates the ERP tables, indexes and functions that do not exist yet.
func EnsureERPSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range erpSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying erp schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
