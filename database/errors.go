package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Constraint violations surfaced by the store.
var (
	ErrUniqueViolation     = errors.New("uniqueness violation")
	ErrCheckViolation      = errors.New("check constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrNotNullViolation    = errors.New("not null violation")
)

// Classify wraps SQLite constraint errors with the matching sentinel so callers
// can use errors.Is. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %s", ErrUniqueViolation, sqliteErr.Error())
	case sqlite3.ErrConstraintCheck:
		return fmt.Errorf("%w: %s", ErrCheckViolation, sqliteErr.Error())
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, sqliteErr.Error())
	case sqlite3.ErrConstraintNotNull:
		return fmt.Errorf("%w: %s", ErrNotNullViolation, sqliteErr.Error())
	default:
		return err
	}
}

// IsConstraint reports whether err is any classified constraint violation.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrUniqueViolation) ||
		errors.Is(err, ErrCheckViolation) ||
		errors.Is(err, ErrForeignKeyViolation) ||
		errors.Is(err, ErrNotNullViolation)
}
