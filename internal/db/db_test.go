package db

import (
	"context"
	"testing"
)

func TestEnsureLocalSchemaIdempotent(t *testing.T) {
	database := NewTestLocalDB(t)

	if err := EnsureLocalSchema(database); err != nil {
		t.Fatalf("second EnsureLocalSchema: %v", err)
	}

	for _, table := range []string{"media", "settings", "revoked_tokens"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenPostgresRequiresURL(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), "", 0); err == nil {
		t.Error("expected error for empty database url")
	}
}

func TestEnsureERPSchemaIdempotent(t *testing.T) {
	pg := NewTestERP(t)

	if err := EnsureERPSchema(context.Background(), pg.DB); err != nil {
		t.Fatalf("second EnsureERPSchema: %v", err)
	}

	var exists bool
	err := pg.DB.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = 'sml_ic_function_stock_balance_warehouse_location')`,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("checking stock function: %v", err)
	}
	if !exists {
		t.Error("expected stock balance function to exist")
	}
}
