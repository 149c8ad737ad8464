package errors

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsCodeForIs(t *testing.T) {
	err := Clone(ErrNotFound, "course History not found")
	wrapped := fmt.Errorf("assign: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrSchema))
	assert.Equal(t, "course History not found", err.Error())
}

func TestFromErrorNormalises(t *testing.T) {
	assert.Nil(t, FromError(nil))

	plain := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, "internal error: boom", plain.Error())

	typed := Clone(ErrSchema, "")
	assert.Same(t, typed, FromError(fmt.Errorf("outer: %w", typed)))
}

func TestIsUnreachable(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	assert.True(t, IsUnreachable(dial))
	assert.True(t, IsUnreachable(fmt.Errorf("ping: %w", driver.ErrBadConn)))
	assert.True(t, IsUnreachable(&pq.Error{Code: "08006"}))
	assert.True(t, IsUnreachable(&pq.Error{Code: "57P03"}))
	assert.True(t, IsUnreachable(Clone(ErrUnreachable, "maintenance db")))
	assert.False(t, IsUnreachable(&pq.Error{Code: "42P07"}))
	assert.False(t, IsUnreachable(errors.New("syntax")))
	assert.False(t, IsUnreachable(nil))
}

func TestIsObjectInUse(t *testing.T) {
	assert.True(t, IsObjectInUse(fmt.Errorf("drop database: %w", &pq.Error{Code: "55006"})))
	assert.False(t, IsObjectInUse(&pq.Error{Code: "42P04"}))
	assert.False(t, IsObjectInUse(errors.New("other")))
}

func TestFromPostgresClassifies(t *testing.T) {
	fk := &pq.Error{Code: "23503", Constraint: "studentscourses_course_id_fkey"}

	err := FromPostgres(fk, "insert enrollment")
	assert.Equal(t, ErrConstraint.Code, err.Code)
	assert.True(t, errors.Is(err, ErrConstraint))
	assert.Equal(t, "studentscourses_course_id_fkey", ConstraintName(err))

	assert.Equal(t, ErrUnreachable.Code, FromPostgres(&pq.Error{Code: "08001"}, "connect").Code)
	assert.Equal(t, ErrInternal.Code, FromPostgres(errors.New("other"), "x").Code)
	assert.Nil(t, FromPostgres(nil, "x"))
}
