package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/civicvote/voting-system/internal/api/handler"
	"github.com/civicvote/voting-system/internal/api/middleware"
	"github.com/civicvote/voting-system/internal/core/ports"
	"github.com/civicvote/voting-system/internal/infrastructure/http/handlers"
	"github.com/civicvote/voting-system/pkg/logger"
)

const metricsSubsystem = "voting_api"

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Users      ports.UserService
	Candidates ports.CandidateService

	UserFinder    middleware.UserFinder
	Tokens        middleware.TokenParser
	UploadLimiter middleware.UploadLimiter
	Readiness     []handlers.Dependency

	UploadDir     string
	PublicBaseURL string
	MaxImageBytes int64

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logger.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware(metricsSubsystem))

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewHealthDependenciesHandler(d.Readiness...).Readiness)
	e.Static(handler.ImagePath, d.UploadDir)

	// Body limits run after auth so protected routes answer 401 first.
	auth := middleware.Auth(d.Tokens)
	admin := middleware.RequireAdmin(d.UserFinder)
	uploadLimit := middleware.UploadRateLimit(d.UploadLimiter, d.Log)
	jsonBody := echomiddleware.BodyLimit(jsonBodyLimit)
	uploadBody := middleware.UploadBodyLimit(uploadBodyLimit(d.MaxImageBytes))

	v1 := e.Group("/api/v1")

	// --- User routes ---
	users := handler.NewUserHandler(d.Users)
	u := v1.Group("/user")
	u.POST("", users.Register, jsonBody)
	u.POST("/login", users.Login, jsonBody)
	u.GET("", users.Get, auth, jsonBody)
	u.PUT("", users.UpdateProfile, auth, jsonBody)
	u.PUT("/updatePassword", users.UpdatePassword, auth, jsonBody)

	// --- Candidate routes ---
	candidates := handler.NewCandidateHandler(d.Candidates, d.PublicBaseURL, d.MaxImageBytes)
	cg := v1.Group("/candidate")
	cg.GET("", candidates.List)
	cg.GET("/vote/count", candidates.Tally)
	cg.POST("/vote/:candidateID", candidates.Vote, auth, jsonBody)
	cg.POST("", candidates.Create, auth, admin, uploadLimit, uploadBody)
	cg.PUT("/:id", candidates.Update, auth, admin, uploadLimit, uploadBody)
	cg.DELETE("/:id", candidates.Delete, auth, admin, jsonBody)

	return e
}

const jsonBodyLimit = "1M"

// uploadBodyLimit leaves room for form fields and multipart framing above the
// image ceiling, so a slightly oversize image still reaches the handler's
// size check.
func uploadBodyLimit(maxImageBytes int64) int64 {
	if maxImageBytes <= 0 {
		maxImageBytes = 1 << 20
	}
	return 2*maxImageBytes + 1<<20
}
