// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strings"

	"github.com/dalemusser/hsms/internal/app/store/audit"
	"github.com/dalemusser/hsms/internal/app/system/reqlog"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authorization events (denied requests).
	Auth string
	// Admin controls logging for announcement changes.
	Admin string
}

// ValidSetting reports whether s is one of all, db, log or off.
func ValidSetting(s string) bool {
	switch s {
	case All, DB, Log, Off:
		return true
	}
	return false
}

// Logger writes audit events to MongoDB (via audit.Store) and/or zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's setting.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = All
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if event.IP == "" {
		event.IP = reqlog.ClientIP(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = reqlog.RequestID(ctx)
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if (setting == All || setting == DB) && l.store != nil {
		// The request may already be finished; the write must not be
		// cancelled with it.
		if err := l.store.Log(context.WithoutCancel(ctx), event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authorization Events ---

// AuthorizationDenied logs a protected request whose username is not a teacher.
func (l *Logger) AuthorizationDenied(ctx context.Context, username, operation string) {
	reason := "unknown teacher"
	if strings.TrimSpace(username) == "" {
		reason = "missing username"
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventAuthorizationDenied,
		Actor:         username,
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"operation": operation,
		},
	})
}

// --- Announcement Events ---

// AnnouncementCreated logs a new announcement.
func (l *Logger) AnnouncementCreated(ctx context.Context, actor, announcementID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAnnouncementCreated,
		Actor:     actor,
		TargetID:  announcementID,
		Success:   true,
	})
}

// AnnouncementUpdated logs an update with the list of changed fields.
func (l *Logger) AnnouncementUpdated(ctx context.Context, actor, announcementID string, fieldsChanged []string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAnnouncementUpdated,
		Actor:     actor,
		TargetID:  announcementID,
		Success:   true,
		Details: map[string]string{
			"fields_changed": strings.Join(fieldsChanged, ","),
		},
	})
}

// AnnouncementDeleted logs a deletion.
func (l *Logger) AnnouncementDeleted(ctx context.Context, actor, announcementID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAnnouncementDeleted,
		Actor:     actor,
		TargetID:  announcementID,
		Success:   true,
	})
}
