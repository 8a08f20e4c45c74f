// Package dberr maps driver failures onto the shared error sentinels.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation matches duplicate-key failures from Postgres and from any
// dialect whose errors gorm translates.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// NotFound turns gorm.ErrRecordNotFound into pkgerrors.ErrNotFound.
func NotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.ErrNotFound
	}
	return err
}
