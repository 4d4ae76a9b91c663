package db

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil, ""))

	sqliteErr := fmt.Errorf("UNIQUE constraint failed: users.email")
	assert.True(t, IsUniqueViolation(sqliteErr, ""))

	pgErr := fmt.Errorf(`duplicate key value violates unique constraint "users_email_key"`)
	assert.True(t, IsUniqueViolation(pgErr, ""))
	assert.True(t, IsUniqueViolation(pgErr, "users_email_key"))
	assert.False(t, IsUniqueViolation(pgErr, "groups_slug_key"))

	assert.False(t, IsUniqueViolation(fmt.Errorf("connection refused"), ""))
}
