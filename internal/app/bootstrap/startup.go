// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	teacherstore "github.com/dalemusser/hsms/internal/app/store/teachers"
	"github.com/dalemusser/hsms/internal/app/system/timeouts"
	"github.com/dalemusser/hsms/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after DB connections and schema setup, before the HTTP
// handler is built. It applies configured timeouts and seeds teachers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	cfg := timeouts.Current()
	if appCfg.TimeoutShort > 0 {
		cfg.Short = appCfg.TimeoutShort
	}
	if appCfg.TimeoutMedium > 0 {
		cfg.Medium = appCfg.TimeoutMedium
	}
	timeouts.Configure(cfg)

	return ensureTeachers(ctx, deps, appCfg.SeedTeachers, logger)
}

// ensureTeachers inserts each username that is not yet a teacher.
// Existing teachers are left untouched.
func ensureTeachers(ctx context.Context, deps DBDeps, usernames []string, logger *zap.Logger) error {
	if len(usernames) == 0 {
		return nil
	}
	store := teacherstore.New(deps.MongoDatabase)

	for _, username := range usernames {
		opCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), logger, "seed teacher")
		created, err := store.EnsureExists(opCtx, models.Teacher{Username: username})
		cancel()
		if err != nil {
			logger.Error("failed to seed teacher", zap.String("username", username), zap.Error(err))
			return err
		}
		if created {
			logger.Info("seeded teacher", zap.String("username", username))
		}
	}
	return nil
}
