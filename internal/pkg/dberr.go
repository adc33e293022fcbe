package pkg

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/domain"
)

// MapDBError converts GORM errors to domain errors: missing rows map to
// NotFound, unique violations to Conflict, everything else to a generic
// internal error that keeps the driver error for logging only.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound("not found")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.Conflict("already exists")
	}
	return domain.Internal("database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. Not all GORM dialectors translate driver-level errors to
// gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
