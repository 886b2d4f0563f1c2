package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeUnauthorized, "invalid validate code")
	assert.True(t, HasCode(err, CodeUnauthorized))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeUnauthorized))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, CodeInternal, "failed to store key")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestWrappedCodeSurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeConflict, "key already registered"))
	assert.True(t, HasCode(err, CodeConflict))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeMissingInput: http.StatusUnauthorized,
		CodeConflict:     http.StatusUnauthorized,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeBadRequest:   http.StatusBadRequest,
		CodeNotFound:     http.StatusNotFound,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
