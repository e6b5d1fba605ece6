package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestViolationHelpers(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "customers_nit_ci_key"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "quote_items_type_id_fkey"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
	assert.Equal(t, "customers_nit_ci_key", ConstraintName(fmt.Errorf("wrap: %w", unique)))
	assert.Empty(t, ConstraintName(errors.New("plain")))
}
