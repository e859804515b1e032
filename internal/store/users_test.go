package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserByCode(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM erp_user WHERE code = \$1`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"code", "name_1", "password", "ic_wht", "ic_shelf"}).
			AddRow("u1", "Somchai", "secret", "1301", "130101"))

	u, err := GetUserByCode(context.Background(), db, "u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Somchai", u.Name)
	assert.Equal(t, "secret", u.Password)
	assert.Equal(t, "1301", u.WhCode)
	assert.Equal(t, "130101", u.Shelf)
}

func TestGetUserByCodeUnknown(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM erp_user`).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"code", "name_1", "password", "ic_wht", "ic_shelf"}))

	u, err := GetUserByCode(context.Background(), db, "ghost")
	require.NoError(t, err)
	assert.Nil(t, u)
}
