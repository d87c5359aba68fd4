package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/credauth/internal/auth/service"
	"github.com/aussiebroadwan/credauth/internal/auth/store"
	"github.com/aussiebroadwan/credauth/pkg/httpx"
	"github.com/aussiebroadwan/credauth/pkg/jwtx"
	"github.com/aussiebroadwan/credauth/pkg/slogx"

	_ "github.com/aussiebroadwan/credauth/api/credauth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	issuer       jwtx.TokenIssuer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService *service.AuthService

	// Gatherer backs GET /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// CORSOrigins lists browser origins allowed to call the API. "*" allows
	// any origin and an empty list disables CORS headers entirely.
	CORSOrigins []string
}

func NewRouter(
	issuer jwtx.TokenIssuer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}
}

// ApplyRoutes registers every route and builds the middleware chain. Call it
// once after the exported fields are set.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if len(r.CORSOrigins) > 0 {
		r.middlewares = append(r.middlewares, httpx.CORS(r.CORSOrigins))
	}
	r.middlewares = append(r.middlewares, httpx.Recoverer)

	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
	r.Mux.Handle("/", NotFoundHandler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			credauth Authentication Service API
//	@version		0.1.0
//	@description	Registers principals with a username and password and issues HS256 bearer tokens on login.
//	@description
//	@description				Tokens are valid for 24 hours. There is no refresh or revocation.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/credauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				HS256 token from /api/auth/login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /api/auth/register", &RegisterHandler{AuthService: r.AuthService})
	r.Mux.Handle("POST /api/auth/login", &LoginHandler{AuthService: r.AuthService})
	r.Mux.Handle("GET /api/auth/me", httpx.AuthnMiddleware(r.AuthService)(SessionHandler()))
}

func (r *Router) registerSystem() {
	gatherer := r.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Mux.Handle("GET /{$}", IndexHandler(r.buildVersion))
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.issuer))
	r.Mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
