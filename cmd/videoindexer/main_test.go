package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitErr_WrapsUnderlyingErrorAndCode(t *testing.T) {
	cause := errors.New("quota exceeded")
	wrapped := exitErr(cause, exitQuotaExceeded)

	var ec *exitCode
	ok := errors.As(wrapped, &ec)
	assert.True(t, ok)
	assert.Equal(t, exitQuotaExceeded, ec.code)
	assert.Equal(t, "quota exceeded", ec.Error())
}

func TestExitErr_UnwrapsToOriginalError(t *testing.T) {
	cause := errors.New("config invalid")
	wrapped := exitErr(cause, exitConfigError)
	assert.ErrorIs(t, wrapped, cause)
}
