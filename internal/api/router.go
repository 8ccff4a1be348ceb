// Package api assembles the HTTP surface of the auth service.
//
// @title                       JNF Payroll Auth API
// @version                     1.0
// @description                 Credential store, JWT issuance and protected resources.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/jnfpayroll/auth-api/internal/api/docs"
	"github.com/jnfpayroll/auth-api/internal/api/handler"
	"github.com/jnfpayroll/auth-api/internal/api/middleware"
	"github.com/jnfpayroll/auth-api/internal/core/domain"
	"github.com/jnfpayroll/auth-api/internal/core/ports"
)

// Deps holds everything the router needs. Registerer and Gatherer are
// optional; nil disables HTTP metrics and the /metrics endpoint.
type Deps struct {
	Gateway   ports.AuthGateway
	Users     ports.CredentialStore
	Tokens    ports.TokenService
	Readiness map[string]handler.Pinger

	AllowedOrigins []string

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	if deps.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "auth_http",
			Registerer: deps.Registerer,
		}))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Gateway)
	userHandler := handler.NewUserHandler(deps.Users, deps.Log)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/api/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Auth routes ---
	g := e.Group("/api")
	g.POST("/login", authHandler.Login)
	g.POST("/verify-token", authHandler.VerifyToken)
	g.GET("/protected", authHandler.Protected)
	g.POST("/users", authHandler.CreateUser)
	g.GET("/users", userHandler.List,
		middleware.Auth(deps.Tokens),
		middleware.RBAC(domain.RoleAdmin),
	)

	if deps.Gatherer != nil {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: deps.Gatherer,
		}))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
