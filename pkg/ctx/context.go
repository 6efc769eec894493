// Package ctx gives handlers a single *Context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (h *RestaurantController) Show(c *ctx.Context) {
//	    restaurant, err := h.service.Get(c.Context(), c.Param("id"))
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.OK(restaurant)
//	}
//
//	router.Get("/restaurants/{id}", "restaurants.show", ctx.Wrap(h.Show))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/bind"
	"github.com/crowdfork/crowdfork/pkg/identity"
	"github.com/crowdfork/crowdfork/pkg/logger"
	"github.com/crowdfork/crowdfork/pkg/response"
)

type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc. Contexts are pooled.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{New: func() any { return &Context{} }}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R = w, r
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// Param returns a path parameter ("/reviews/{id}" → c.Param("id")).
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

// QueryInt parses an integer query parameter, returning def when it is
// absent and a validation error when it is not an integer.
func (c *Context) QueryInt(key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.InvalidFields(map[string]string{key: "The " + key + " field must be an integer."})
	}
	return n, nil
}

// QueryFloat parses an optional float query parameter; nil means absent.
func (c *Context) QueryFloat(key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.InvalidFields(map[string]string{key: "The " + key + " field must be a number."})
	}
	return &f, nil
}

func (c *Context) Context() context.Context { return c.R.Context() }

// Principal returns the caller set by the auth middleware.
func (c *Context) Principal() (identity.Principal, bool) {
	return identity.FromContext(c.R.Context())
}

// BindJSON decodes and validates the body into dest. On failure it writes
// a 400 and returns false; the handler should return immediately.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Fail(apperror.Validation(err.Error()))
		return false
	}
	if len(errs) > 0 {
		c.Fail(apperror.InvalidFields(errs))
		return false
	}
	return true
}

func (c *Context) OK(v any)      { response.OK(c.W, v) }
func (c *Context) Created(v any) { response.Created(c.W, v) }

// Message writes {"message": msg} with a 200.
func (c *Context) Message(msg string) { response.Message(c.W, http.StatusOK, msg) }

// Fail writes err as an error body. Server-side failures are logged with
// the request id.
func (c *Context) Fail(err error) {
	if apperror.Status(err) >= http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.R.Method,
			"path", c.R.URL.Path,
			"error", err,
		)
	}
	response.Error(c.W, err)
}
