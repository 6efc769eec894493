// Package kernel builds the HTTP handler: global middleware, the metrics
// and liveness endpoints, then the API routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/crowdfork/crowdfork/app/routes"
	"github.com/crowdfork/crowdfork/config"
	"github.com/crowdfork/crowdfork/pkg/logger"
	"github.com/crowdfork/crowdfork/pkg/metrics"
	"github.com/crowdfork/crowdfork/pkg/middleware"
	"github.com/crowdfork/crowdfork/pkg/reqid"
	"github.com/crowdfork/crowdfork/pkg/response"
	"github.com/crowdfork/crowdfork/pkg/router"
)

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(deps routes.Deps) *HTTPKernel {
	r := router.New()

	// Outermost first: metrics see total latency, recovery wraps everything
	// that can panic, the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	if err := middleware.TrustProxies(config.TrustedProxies()); err != nil {
		logger.Warn("ignoring TRUSTED_PROXIES", "error", err)
	}
	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Detail(w, http.StatusNotFound, "not_found", "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Detail(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed")
	})

	r.Handle("/metrics", metrics.Handler())
	r.Get("/", "home", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]string{"Hello": "World"})
	})

	routes.RegisterAPI(r, deps)

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

func (k *HTTPKernel) Routes() []router.RouteInfo { return k.router.Routes() }
