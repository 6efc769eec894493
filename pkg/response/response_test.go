package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdfork/crowdfork/pkg/apperror"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorUsesKind(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperror.Forbidden("You can only delete your own reviews"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "You can only delete your own reviews", body.Detail)
	assert.Equal(t, "forbidden", body.Code)
}

func TestErrorCarriesFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperror.InvalidFields(map[string]string{"name": "The name field is required."}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "validation_error", body.Code)
	assert.Equal(t, "The name field is required.", body.Errors["name"])
}

func TestUnknownErrorIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "disk on fire", decode(t, rec).Detail)
}

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Message(rec, http.StatusOK, "Review deleted successfully")

	assert.JSONEq(t, `{"message":"Review deleted successfully"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
