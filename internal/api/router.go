package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/mindtrack/cbt-api/docs"
	"github.com/mindtrack/cbt-api/internal/api/handler"
	"github.com/mindtrack/cbt-api/internal/api/middleware"
	"github.com/mindtrack/cbt-api/internal/core/access"
	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
	"github.com/mindtrack/cbt-api/internal/core/service"
)

// Deps are the collaborators the router wires into handlers and middleware.
type Deps struct {
	Logger zerolog.Logger

	Auth        ports.AuthService
	Users       ports.UserService
	Invitations ports.InvitationService
	Records     *service.Records
	Progress    ports.ProgressService
	Plans       ports.PlanService

	Access  middleware.AccessChecker
	Cookies *middleware.CookiePolicy
	// Audit receives access denials. Optional.
	Audit ports.AuditSink

	Readiness []handler.DependencyCheck

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "cbt",
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)                         // liveness  – is the process alive?
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness...).Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticate := middleware.Authenticate(d.Auth, d.Cookies)
	guard := func(op access.Op) echo.MiddlewareFunc {
		return middleware.UserAccess(d.Access, op, d.Audit)
	}
	adminOnly := middleware.RequireAdmin()
	therapistOnly := middleware.RequireTherapist()

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookies)
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, authenticate)
	auth.GET("/me", authHandler.Me, authenticate)

	// --- Invitations ---
	invitationHandler := handler.NewInvitationHandler(d.Invitations)
	e.POST("/api/invitations", invitationHandler.Create, authenticate, therapistOnly)

	// --- Users and the therapist–client relationship ---
	userHandler := handler.NewUserHandler(d.Users)
	users := e.Group("/api/users", authenticate)
	users.GET("", userHandler.List, adminOnly)
	users.POST("", userHandler.Create, adminOnly)
	users.GET("/:userId", userHandler.Get, guard(access.OpRead))
	users.PATCH("/:userId", userHandler.UpdateProfile, guard(access.OpRead))
	users.DELETE("/:userId", userHandler.Delete, adminOnly)
	users.PATCH("/:userId/status", userHandler.SetStatus, adminOnly)
	users.PUT("/:userId/therapist", userHandler.AssignTherapist, adminOnly)
	users.PUT("/:userId/subscription", userHandler.AssignSubscription, adminOnly)
	users.GET("/:userId/clients", userHandler.ListClients, therapistOnly, guard(access.OpRead))
	users.PUT("/:userId/viewing-client", userHandler.SetViewingClient, therapistOnly, guard(access.OpRead))

	// --- Owned records ---
	rr := recordRouter{group: users, guard: guard}
	registerRecords[domain.EmotionRecord](rr, d.Records.Emotions, true)
	registerRecords[domain.ThoughtRecord](rr, d.Records.Thoughts, true)
	registerRecords[domain.Goal](rr, d.Records.Goals, true)
	registerRecords[domain.Action](rr, d.Records.Actions, true)
	registerRecords[domain.JournalEntry](rr, d.Records.Journals, true)
	registerRecords[domain.ProtectiveFactor](rr, d.Records.ProtectiveFactors, true)
	registerRecords[domain.CopingStrategy](rr, d.Records.CopingStrategies, true)
	registerRecords[domain.Resource](rr, d.Records.Resources, true)
	// Usages are created through their thought record.
	registerRecords[domain.StrategyUsage](rr, d.Records.StrategyUsages, false)

	// --- Progress and feedback ---
	progressHandler := handler.NewProgressHandler(d.Progress)
	users.PATCH("/:userId/goals/:id/status", progressHandler.SetGoalStatus, guard(access.OpFeedback))
	users.POST("/:userId/goals/:id/feedback", progressHandler.AddGoalFeedback, therapistOnly, guard(access.OpFeedback))
	users.POST("/:userId/goals/:id/milestones", progressHandler.AddMilestone, guard(access.OpCreate))
	users.PATCH("/:userId/goals/:id/milestones/:milestoneId/complete", progressHandler.CompleteMilestone, guard(access.OpFeedback))
	users.PATCH("/:userId/actions/:id/complete", progressHandler.CompleteAction, guard(access.OpFeedback))
	users.POST("/:userId/journals/:id/comments", progressHandler.AddJournalComment, guard(access.OpRead))
	users.GET("/:userId/thoughts/:id/strategy-usages", progressHandler.ListStrategyUsages, guard(access.OpRead))
	users.POST("/:userId/thoughts/:id/strategy-usages", progressHandler.AddStrategyUsage, guard(access.OpCreate))

	// --- Subscription plans (reads are public) ---
	planHandler := handler.NewPlanHandler(d.Plans)
	plans := e.Group("/api/subscription-plans")
	plans.GET("", planHandler.List)
	plans.GET("/:planId", planHandler.Get)
	plans.POST("", planHandler.Create, authenticate, adminOnly)
	plans.PATCH("/:planId", planHandler.Update, authenticate, adminOnly)
	plans.DELETE("/:planId", planHandler.Delete, authenticate, adminOnly)

	return e
}

type recordRouter struct {
	group *echo.Group
	guard func(access.Op) echo.MiddlewareFunc
}

// registerRecords mounts CRUD for one record kind under /api/users/:userId.
// Personal kinds are created only by clients and admins; the rest follow the
// creation permission.
func registerRecords[T any, PT domain.RecordPtr[T]](rr recordRouter, svc ports.RecordService[T], withCreate bool) {
	h := handler.NewRecordHandler[T, PT](svc)
	kind := h.Kind()
	base := "/:userId/" + string(kind)
	read := rr.guard(access.OpRead)

	rr.group.GET(base, h.List, read)
	rr.group.GET(base+"/:id", h.Get, read)
	rr.group.PUT(base+"/:id", h.Update, read)
	rr.group.DELETE(base+"/:id", h.Delete, read)

	if !withCreate {
		return
	}
	if kind.Personal() {
		rr.group.POST(base, h.Create, read, middleware.RequireClientOrAdmin())
		return
	}
	rr.group.POST(base, h.Create, rr.guard(access.OpCreate))
}

// requestLogger feeds echo's request logger into zerolog.
func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := logger.Info()
			if v.Status >= 500 {
				ev = logger.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
