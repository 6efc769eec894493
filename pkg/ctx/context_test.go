package ctx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appctx "github.com/crowdfork/crowdfork/pkg/ctx"
	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/identity"
)

func serve(req *http.Request, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestWrapAndJSON(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.OK(map[string]any{"ok": true})
	})

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreated(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodPost, "/", nil), func(c *appctx.Context) {
		c.Created(map[string]string{"id": "r1"})
	})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestQueryIntDefaultsAndRejects(t *testing.T) {
	serve(httptest.NewRequest(http.MethodGet, "/?limit=5", nil), func(c *appctx.Context) {
		if n, err := c.QueryInt("limit", 10); err != nil || n != 5 {
			t.Errorf("expected 5, got %d (%v)", n, err)
		}
		if n, _ := c.QueryInt("missing", 10); n != 10 {
			t.Errorf("expected default 10, got %d", n)
		}
	})

	serve(httptest.NewRequest(http.MethodGet, "/?limit=ten", nil), func(c *appctx.Context) {
		if _, err := c.QueryInt("limit", 10); !apperror.Is(err, apperror.KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestQueryFloat(t *testing.T) {
	serve(httptest.NewRequest(http.MethodGet, "/?latitude=40.5", nil), func(c *appctx.Context) {
		lat, err := c.QueryFloat("latitude")
		if err != nil || lat == nil || *lat != 40.5 {
			t.Errorf("unexpected latitude %v (%v)", lat, err)
		}
		lon, err := c.QueryFloat("longitude")
		if err != nil || lon != nil {
			t.Errorf("expected nil longitude, got %v (%v)", lon, err)
		}
	})
}

func TestBindJSONWritesValidationError(t *testing.T) {
	type in struct {
		Name string `json:"name" validate:"required"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	rec := serve(req, func(c *appctx.Context) {
		var body in
		if c.BindJSON(&body) {
			t.Error("expected BindJSON to fail")
		}
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"validation_error"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestFailMapsKinds(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Fail(apperror.NotFound("Review not found"))
	})
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"detail":"Review not found"`) {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Fail(errors.New("boom"))
	})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(identity.WithPrincipal(req.Context(), identity.Principal{UserID: "u1"}))

	serve(req, func(c *appctx.Context) {
		p, ok := c.Principal()
		if !ok || p.UserID != "u1" {
			t.Errorf("unexpected principal %+v", p)
		}
	})
}
