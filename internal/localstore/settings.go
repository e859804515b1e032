package localstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// SettingKey names a row in the local settings table.
type SettingKey string

const (
	// SettingJWTSecret holds the hex-encoded token signing secret.
	SettingJWTSecret SettingKey = "jwt_secret"
)

// GetSetting returns the value stored under key and whether it exists.
func GetSetting(ctx context.Context, db *sql.DB, key SettingKey) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, string(key)).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return value, true, nil
}

// ensureSetting stores value under key unless the key already has one, and
// returns whichever value ends up stored.
func ensureSetting(ctx context.Context, db *sql.DB, key SettingKey, value string) (string, error) {
	if _, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`,
		string(key), value,
	); err != nil {
		return "", fmt.Errorf("storing setting %s: %w", key, err)
	}

	stored, ok, err := GetSetting(ctx, db, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("setting %s missing after insert", key)
	}
	return stored, nil
}

// GetJWTSecret returns the token signing secret used when none is configured,
// creating it on the first start of a fresh local database.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	secret, ok, err := GetSetting(ctx, db, SettingJWTSecret)
	if err != nil || ok {
		return secret, err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return ensureSetting(ctx, db, SettingJWTSecret, hex.EncodeToString(buf))
}
