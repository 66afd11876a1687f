// Package patrol собирает HTTP API записи на визиты: хранилище, кэш,
// брокер, сервисы и маршруты.
package patrol

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-документа.
	_ "github.com/FSDTeam-SAA/lharris5324-backend/docs"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/config"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/auth/login"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/health"
	plancreate "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/plans/create"
	planlist "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/plans/list"
	planread "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/plans/read"
	usercreate "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/users/create"
	userlist "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/users/list"
	userremove "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/users/remove"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/users/rolestatus"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/users/staff"
	userupdate "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/users/update"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/visits/bystatus"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/visits/cancel"
	visitcreate "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/visits/create"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/visits/issues"
	visitlist "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/visits/list"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/visits/next"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/visits/search"
	visitstatus "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/visits/status"
	visitupdate "github.com/FSDTeam-SAA/lharris5324-backend/internal/http/handlers/visits/update"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/middlewarectx"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/metrics"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	authservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/auth"
	planservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/plan"
	userservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/user"
	visitservice "github.com/FSDTeam-SAA/lharris5324-backend/internal/services/visit"
)

// Services собирает сервисы, нужные обработчикам.
type Services struct {
	Auth   *authservice.Service
	Users  *userservice.Service
	Plans  *planservice.Service
	Visits *visitservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, db health.Pinger, m *metrics.Metrics, gatherer prometheus.Gatherer, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		m.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

			r.Get("/plans", planlist.New(logger, s.Plans).ServeHTTP)
			r.Get("/plans/{id}", planread.New(logger, s.Plans).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))
				r.Get("/admin/users", userlist.New(logger, s.Users).ServeHTTP)
				r.Post("/admin/users", usercreate.New(logger, s.Users).ServeHTTP)
				r.Get("/admin/users/{role}/{status}", rolestatus.New(logger, s.Users).ServeHTTP)
				r.Put("/admin/users/{id}", userupdate.New(logger, s.Users).ServeHTTP)
				r.Delete("/admin/users/{id}", userremove.New(logger, s.Users).ServeHTTP)
				r.Get("/admin/staff", staff.New(logger, s.Users).ServeHTTP)
				r.Post("/admin/plans", plancreate.New(logger, s.Plans).ServeHTTP)
			})

			r.With(middlewarectx.RequireRole(logger, models.RoleAdmin, models.RoleStaff)).
				Patch("/admin/visits/{id}/status", visitstatus.New(logger, s.Visits).ServeHTTP)

			r.Route("/visits", func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleClient))
				registerVisitRoutes(r, logger, s.Visits)
			})
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

func registerVisitRoutes(r chi.Router, logger *slog.Logger, visits *visitservice.Service) {
	r.Post("/", visitcreate.New(logger, visits).ServeHTTP)
	r.Get("/", visitlist.New(logger, visits, visitservice.BucketAll, "Visits fetched successfully").ServeHTTP)
	r.Get("/search", search.New(logger, visits).ServeHTTP)
	r.Get("/next", next.New(logger, visits).ServeHTTP)
	r.Get("/issues/count", issues.New(logger, visits).ServeHTTP)

	for _, st := range []models.VisitStatus{
		models.VisitConfirmed, models.VisitPending, models.VisitCompleted, models.VisitCancelled,
	} {
		r.Get("/"+string(st), bystatus.New(logger, visits, st).ServeHTTP)
	}
	r.Get("/completed/paginated", visitlist.New(logger, visits, visitservice.BucketCompleted, "Completed visits fetched successfully").ServeHTTP)
	r.Get("/completed/issues", visitlist.New(logger, visits, visitservice.BucketCompletedWithIssues, "Completed visits with issues fetched successfully").ServeHTTP)
	r.Get("/past", visitlist.New(logger, visits, visitservice.BucketPast, "Past visits fetched successfully").ServeHTTP)
	r.Get("/upcoming", visitlist.New(logger, visits, visitservice.BucketUpcoming, "Upcoming visits fetched successfully").ServeHTTP)

	r.Put("/{id}", visitupdate.New(logger, visits).ServeHTTP)
	r.Post("/{id}/cancel", cancel.New(logger, visits).ServeHTTP)
}
