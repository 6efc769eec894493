package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdfork/crowdfork/config"
)

type input struct {
	Name string `json:"name" validate:"required"`
}

func TestJSONValid(t *testing.T) {
	var in input
	errs, err := JSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`)), &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "x", in.Name)
}

func TestJSONValidationErrors(t *testing.T) {
	var in input
	errs, err := JSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "name")
}

func TestJSONMalformedAndEmpty(t *testing.T) {
	var in input
	_, err := JSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)), &in)
	assert.Error(t, err)

	_, err = JSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``)), &in)
	assert.EqualError(t, err, "request body is required")
}

func TestJSONTooLarge(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	defer config.Set("MAX_BODY_BYTES", "")

	var in input
	_, err := JSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`)), &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
