package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// pgError mimics a driver error exposing ErrorResponse fields.
type pgError struct {
	fields map[byte]string
}

func (e pgError) Error() string       { return "ERROR: " + e.fields['M'] }
func (e pgError) Field(k byte) string { return e.fields[k] }

func newPGError(code, msg string) pgError {
	return pgError{fields: map[byte]string{'C': code, 'M': msg}}
}

func TestHTTPStatus(t *testing.T) {
	dup := newPGError(UniqueViolation, `duplicate key value violates unique constraint "users_pkey"`)
	other := newPGError("42P01", `relation "users" does not exist`)

	tests := []struct {
		name   string
		err    *Error
		status int
		body   string
	}{
		{"not found", NotFound(), http.StatusNotFound, ""},
		{"pool", Pool(errors.New("pool exhausted")), http.StatusInternalServerError, "pool exhausted"},
		{"unique violation", Database(dup), http.StatusConflict, ""},
		{"wrapped unique violation", Database(fmt.Errorf("insert: %w", dup)), http.StatusConflict, ""},
		{"other database error", Database(other), http.StatusInternalServerError, ""},
		{"database error without code", Database(errors.New("conn reset")), http.StatusInternalServerError, ""},
		{"mapping", Mapping(errors.New("missing column")), http.StatusInternalServerError, ""},
		{"statement", Statement(other), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.Equal(t, tt.body, tt.err.Body())
		})
	}
}

func TestError_UnwrapAndIs(t *testing.T) {
	cause := newPGError(UniqueViolation, "dup")
	err := fmt.Errorf("handler: %w", Database(cause))

	assert.True(t, Is(err, KindDatabase))
	assert.False(t, Is(err, KindPool))

	var pg pgError
	assert.True(t, errors.As(err, &pg))
	assert.Equal(t, UniqueViolation, SQLState(err))
	assert.True(t, IsDriverError(err))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "not found", NotFound().Error())
	assert.Equal(t, "pool error: timed out", Pool(errors.New("timed out")).Error())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestSQLState_PlainError(t *testing.T) {
	assert.Empty(t, SQLState(errors.New("boom")))
	assert.Empty(t, SQLState(nil))
	assert.False(t, IsUniqueViolation(nil))
}
