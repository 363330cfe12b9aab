package http

import (
	"net/http"
	"time"

	"github.com/go-auth-onboarding/internal/application/access"
	"github.com/go-auth-onboarding/internal/application/admin"
	"github.com/go-auth-onboarding/internal/application/auth"
	"github.com/go-auth-onboarding/internal/application/catalog"
	"github.com/go-auth-onboarding/internal/application/document"
	"github.com/go-auth-onboarding/internal/application/notification"
	"github.com/go-auth-onboarding/internal/config"
	"github.com/go-auth-onboarding/internal/infrastructure/smtp"
	"github.com/go-auth-onboarding/internal/infrastructure/sns"
	"github.com/go-auth-onboarding/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-onboarding/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router. The store
// implementations are chosen by the caller (Postgres or DynamoDB).
type Deps struct {
	Logger       zerolog.Logger
	CustomerRepo CustomerRepository
	AdminRepo    AdminRepository
	ServiceRepo  ServiceRepository
	DocumentRepo DocumentRepository
	ObjectStore  ObjectStore
	Mailer       smtp.Mailer
	// SMSSender is optional; nil disables the SMS copy of the OTP.
	SMSSender   sns.SMSSender
	JWTProvider TokenProvider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(deps.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.MethodHandler("method"))
	r.Use(hlog.URLHandler("path"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, cfg.TrustedProxies)

	resolver := access.NewResolver(deps.AdminRepo)
	notifSvc := notification.NewService(notification.ServiceDeps{
		Mailer:    deps.Mailer,
		SMSSender: deps.SMSSender,
		OTPTTL:    cfg.OTPTTL,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		CustomerRepo:   deps.CustomerRepo,
		OTPSender:      notifSvc,
		JWTProvider:    deps.JWTProvider,
		OTPTTL:         cfg.OTPTTL,
		OTPMaxAttempts: cfg.OTPMaxAttempts,
	})
	adminSvc := admin.NewService(admin.ServiceDeps{
		AdminRepo:   deps.AdminRepo,
		JWTProvider: deps.JWTProvider,
	})
	catalogSvc := catalog.NewService(catalog.ServiceDeps{
		ServiceRepo:  deps.ServiceRepo,
		CustomerRepo: deps.CustomerRepo,
		Access:       resolver,
	})
	documentSvc := document.NewService(document.ServiceDeps{
		ObjectStore:  deps.ObjectStore,
		DocumentRepo: deps.DocumentRepo,
		CustomerRepo: deps.CustomerRepo,
		Access:       resolver,
		URLTTL:       cfg.DocumentURLTTL,
	})

	healthH := handler.NewHealthHandler()
	customerH := handler.NewCustomerAuthHandler(authSvc)
	adminH := handler.NewAdminAuthHandler(adminSvc)
	serviceH := handler.NewServiceHandler(catalogSvc)
	documentH := handler.NewDocumentHandler(documentSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health", healthH.Check)
	r.Route("/auth", func(r chi.Router) {
		r.Use(sensitiveRL.Limit)
		r.Post("/register", customerH.Register)
		r.Post("/verify-email", customerH.VerifyEmail)
		r.Post("/resend-otp", customerH.ResendOTP)
		r.Post("/login", customerH.Login)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Use(sensitiveRL.Limit)
		r.Post("/register", adminH.Register)
		r.Post("/login", adminH.Login)
	})

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Post("/services/select-service", serviceH.Select)
		r.Get("/services/get-services", serviceH.List)
		r.With(appmiddleware.RequireAdmin(resolver)).Post("/services/activate-service", serviceH.Activate)

		r.Post("/documents/upload", documentH.Upload)
		r.Get("/documents", documentH.List)
		r.Get("/documents/{id}", documentH.Get)
	})

	return r
}
