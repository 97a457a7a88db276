package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/microblog/internal/microblog/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mapConstraint translates SQLite constraint failures into the store's
// sentinel errors. Anything else is returned unchanged.
func mapConstraint(err error) error {
	var serr *msqlite.Error
	if !errors.As(err, &serr) {
		return err
	}

	code := serr.Code()
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %v", store.ErrReference, err)
	case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(serr.Error(), "UNIQUE"):
		// Extended result codes disabled on this connection.
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(serr.Error(), "FOREIGN KEY"):
		return fmt.Errorf("%w: %v", store.ErrReference, err)
	}
	return err
}
