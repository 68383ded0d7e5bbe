package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yli59577/puyuann/internal/identity/service"
	"github.com/yli59577/puyuann/internal/identity/store"
	"github.com/yli59577/puyuann/pkg/httpx"
	"github.com/yli59577/puyuann/pkg/jwtx"
	"github.com/yli59577/puyuann/pkg/slogx"

	_ "github.com/yli59577/puyuann/api/identity" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	gateway      *service.AuthGateway
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store     store.Store
	Lifecycle *service.IdentityLifecycle

	// EchoCodes exposes issued verification codes over HTTP. Dev only.
	EchoCodes bool
}

func NewRouter(
	keys *jwtx.KeySet,
	gateway *service.AuthGateway,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		gateway:      gateway,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerVerification()
	r.registerPasswords()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Puyuann Identity Service API
//	@version		0.1.0
//	@description	Account registration, email verification, login and password recovery for the health-tracking backend.
//	@description
//	@description				Session tokens are EdDSA-signed JWTs. Every body carries "status": "0" on success and "1" on failure.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{Lifecycle: r.Lifecycle}

	r.Mux.Handle("POST /api/register", http.HandlerFunc(h.HandleRegister))
	r.Mux.Handle("GET /api/register/check", http.HandlerFunc(h.HandleStatus))
	r.Mux.Handle("POST /api/auth", http.HandlerFunc(h.HandleLogin))

	r.Mux.Handle("GET /api/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.gateway),
		),
	)
}

func (r *Router) registerVerification() {
	h := &VerificationHandler{Lifecycle: r.Lifecycle, EchoCode: r.EchoCodes}

	r.Mux.Handle("POST /api/verification/send", http.HandlerFunc(h.HandleSend))
	r.Mux.Handle("POST /api/verification/check", http.HandlerFunc(h.HandleCheck))
}

func (r *Router) registerPasswords() {
	h := &PasswordHandler{Lifecycle: r.Lifecycle}

	r.Mux.Handle("POST /api/password/reset",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.AuthnMiddleware(r.gateway),
		),
	)
	r.Mux.Handle("POST /api/password/change",
		httpx.Chain(http.HandlerFunc(h.HandleChange),
			httpx.AuthnMiddleware(r.gateway),
		),
	)

	r.Mux.Handle("POST /api/password/forgot", http.HandlerFunc(h.HandleForgot))
	r.Mux.Handle("POST /api/password/forgot/confirm", http.HandlerFunc(h.HandleForgotConfirm))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys))
}
