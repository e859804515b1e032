package db

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// NewTestLocalDB creates a fresh in-memory local state database with the schema applied.
func NewTestLocalDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenLocal(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := EnsureLocalSchema(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// NewTestERP connects to the PostgreSQL database named by TEST_DATABASE_URL,
// applies the ERP schema and empties the document tables. The test is skipped
// when the variable is not set.
func NewTestERP(t *testing.T) *Postgres {
	t.Helper()

	_ = godotenv.Load("../../.env")
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pg, err := OpenPostgres(ctx, url, 4)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}

	if err := EnsureERPSchema(ctx, pg.DB); err != nil {
		pg.Close()
		t.Fatalf("creating erp schema: %v", err)
	}

	if _, err := pg.DB.ExecContext(ctx,
		`TRUNCATE ic_trans, ic_trans_detail, product_image, product_image_history`); err != nil {
		pg.Close()
		t.Fatalf("truncating document tables: %v", err)
	}

	t.Cleanup(func() { pg.Close() })

	return pg
}
