// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"github.com/dalemusser/hsms/internal/app/store/audit"
	"github.com/dalemusser/hsms/internal/app/system/authz"
	"go.uber.org/zap"
)

// EventReader is the read side of the audit store.
type EventReader interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

// OpView names this endpoint in authorization denials.
const OpView = "view_audit"

type Handler struct {
	Events EventReader
	Guard  authz.Guard
	Log    *zap.Logger
}

// NewHandler constructs an audit log feature handler. Refused requests are
// reported to denials, which may be nil.
func NewHandler(events EventReader, auth authz.UsernameAuthorizer, denials authz.DenialRecorder, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Guard:  authz.Guard{Auth: auth, Denials: denials, Log: logger},
		Log:    logger,
	}
}
