package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bankjademk11/qwen-odg/internal/model"
)

// GetUserByCode returns an ERP user including the stored password, or nil if
// the code is unknown.
func GetUserByCode(ctx context.Context, db *sql.DB, code string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT code, COALESCE(name_1, ''), COALESCE(password, ''),
		        COALESCE(ic_wht, ''), COALESCE(ic_shelf, '')
		 FROM erp_user WHERE code = $1`, code,
	).Scan(&u.Code, &u.Name, &u.Password, &u.WhCode, &u.Shelf)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}
