package sqlite

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
)

// mapUniqueViolation turns a users UNIQUE failure into the store sentinel
// for the offending column. Other errors pass through.
func mapUniqueViolation(err error) error {
	var se *sqlite.Error
	unique := errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	if !unique && !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return err
	}
	switch {
	case strings.Contains(err.Error(), "users.correo"):
		return store.ErrDuplicateMail
	case strings.Contains(err.Error(), "users.codigo_barra"):
		return store.ErrDuplicateCode
	}
	return err
}
