package errors

import (
	"database/sql/driver"
	"errors"
	"net"
	"syscall"

	"github.com/lib/pq"
)

// SQLSTATE classes and codes consulted when classifying driver errors.
const (
	pgClassConnection  = "08"
	pgClassIntegrity   = "23"
	pgCannotConnectNow = "57P03"
	pgObjectInUse      = "55006"
)

// IsUnreachable reports whether err means the server could not be reached
// or refused the session: network failures, SQLSTATE class 08, 57P03, or a
// connection that dropped underneath the driver.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	var typed *Error
	if errors.As(err, &typed) && typed.Code == ErrUnreachable.Code {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == pgClassConnection:
			return true
		case string(pqErr.Code) == pgCannotConnectNow:
			return true
		}
	}
	return false
}

// IsConstraintViolation reports SQLSTATE class 23 (foreign key, unique, not null, check).
func IsConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == pgClassIntegrity
	}
	return false
}

// IsObjectInUse reports SQLSTATE 55006, raised when a database still has
// other sessions attached.
func IsObjectInUse(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgObjectInUse
	}
	return false
}

// FromPostgres maps a driver error onto the predefined error kinds,
// keeping the original error wrapped.
func FromPostgres(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	switch {
	case IsUnreachable(err):
		return Wrap(err, ErrUnreachable.Code, message)
	case IsConstraintViolation(err):
		return Wrap(err, ErrConstraint.Code, message)
	default:
		return Wrap(err, ErrInternal.Code, message)
	}
}

// ConstraintName returns the violated constraint, if the driver reported one.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}
