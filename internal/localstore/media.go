package localstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

// PutMedia stores an uploaded blob under key, replacing any previous content.
func PutMedia(ctx context.Context, db *sql.DB, key string, data []byte, mime, createdBy string) (*model.Media, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO media (key, data, mime, size, created_by) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET data = excluded.data, mime = excluded.mime,
		     size = excluded.size, created_by = excluded.created_by, created_at = CURRENT_TIMESTAMP`,
		key, data, mime, len(data), createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("storing media: %w", err)
	}
	return GetMediaInfo(ctx, db, key)
}

// GetMediaInfo returns a blob's metadata, or nil if it does not exist.
func GetMediaInfo(ctx context.Context, db *sql.DB, key string) (*model.Media, error) {
	m := &model.Media{}
	err := db.QueryRowContext(ctx,
		`SELECT key, mime, size, created_by, created_at FROM media WHERE key = ?`, key,
	).Scan(&m.Key, &m.MIME, &m.Size, &m.CreatedBy, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting media info: %w", err)
	}
	return m, nil
}

// GetMedia returns a blob and its MIME type. data is nil when the key is unknown.
func GetMedia(ctx context.Context, db *sql.DB, key string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM media WHERE key = ?`, key,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting media: %w", err)
	}
	return data, mime, nil
}

// DeleteMedia removes a blob. Unknown keys are not an error.
func DeleteMedia(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM media WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	return nil
}
