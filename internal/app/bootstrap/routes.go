// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	announcementsfeature "github.com/dalemusser/hsms/internal/app/features/announcements"
	auditlogfeature "github.com/dalemusser/hsms/internal/app/features/auditlog"
	healthfeature "github.com/dalemusser/hsms/internal/app/features/health"
	announcementstore "github.com/dalemusser/hsms/internal/app/store/announcements"
	"github.com/dalemusser/hsms/internal/app/store/audit"
	teacherstore "github.com/dalemusser/hsms/internal/app/store/teachers"
	"github.com/dalemusser/hsms/internal/app/system/activewindow"
	"github.com/dalemusser/hsms/internal/app/system/auditlog"
	"github.com/dalemusser/hsms/internal/app/system/authz"
	"github.com/dalemusser/hsms/internal/app/system/jsonutil"
	"github.com/dalemusser/hsms/internal/app/system/metrics"
	"github.com/dalemusser/hsms/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It wires stores, the authorizer, the audit logger
// and the announcement service, then mounts:
//
//	/announcements  announcement API
//	/health         Mongo ping
//	/audit          audit trail (teachers only)
//	/metrics        Prometheus
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	loc, err := loadLocation(appCfg.DisplayTimezone)
	if err != nil {
		logger.Error("display timezone load failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	auditStore := audit.New(db)
	authorizer := authz.New(teacherstore.New(db))
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	svc := announcementsfeature.NewService(
		announcementstore.New(db),
		authorizer,
		auditLogger,
		activewindow.New(loc),
		logger,
	)
	svc.SanitizeMessages = appCfg.SanitizeMessages

	r := chi.NewRouter()
	r.Use(reqlog.Middleware(logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonutil.Error(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonutil.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Mount("/announcements", announcementsfeature.Routes(announcementsfeature.NewHandler(svc, logger)))
	r.Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(auditStore, authorizer, auditLogger, logger)))

	logger.Info("routes mounted",
		zap.String("env", coreCfg.Env),
		zap.String("display_timezone", loc.String()),
		zap.Bool("sanitize_messages", appCfg.SanitizeMessages))

	return r, nil
}
