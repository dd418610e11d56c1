package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// SupportsRowLocks reports whether the dialect honors SELECT ... FOR UPDATE.
// SQLite serializes writers on its own, so the clause is omitted there.
func SupportsRowLocks(db *gorm.DB) bool {
	return !strings.EqualFold(db.Dialector.Name(), "sqlite")
}
