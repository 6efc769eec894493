// Package response writes JSON bodies. Errors always use the shape
//
//	{"detail": "Restaurant not found", "code": "not_found"}
//
// with an extra "errors" map for field validation failures.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/crowdfork/crowdfork/pkg/apperror"
)

type ErrorBody struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Errors map[string]string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func OK(w http.ResponseWriter, v interface{})      { JSON(w, http.StatusOK, v) }
func Created(w http.ResponseWriter, v interface{}) { JSON(w, http.StatusCreated, v) }

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error writes err with the status and code of its apperror kind. Errors
// outside the taxonomy become a 500 whose detail is err.Error().
func Error(w http.ResponseWriter, err error) {
	body := ErrorBody{Detail: err.Error(), Code: apperror.Code(err)}
	if e, ok := apperror.As(err); ok {
		body.Detail = e.Error()
		body.Errors = e.Fields
	}
	JSON(w, apperror.Status(err), body)
}

// Detail writes an error body without an error value.
func Detail(w http.ResponseWriter, status int, code, detail string) {
	JSON(w, status, ErrorBody{Detail: detail, Code: code})
}

func Unauthorized(w http.ResponseWriter, detail string) {
	Detail(w, http.StatusUnauthorized, "unauthorized", detail)
}
