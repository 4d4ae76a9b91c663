package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, MetadataFor(CodeNotFound).HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, MetadataFor(CodeStateConflict).HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Code("bogus")).HTTPStatus, "unknown codes render as internal")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("row not found")
	err := Wrap(CodeNotFound, cause, "looking up group")

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.ErrorIs(t, err, cause)
}

func TestAsThroughWrapping(t *testing.T) {
	inner := New(CodeForbidden, "admins only")
	outer := fmt.Errorf("handling request: %w", inner)

	typed := As(outer)
	require.NotNil(t, typed)
	assert.Equal(t, CodeForbidden, typed.Code())

	assert.Nil(t, As(fmt.Errorf("plain")))
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"email": "is required"})
	details, ok := err.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["email"])
}
