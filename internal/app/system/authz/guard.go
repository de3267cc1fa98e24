package authz

import (
	"context"
	"errors"

	"github.com/dalemusser/hsms/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// UsernameAuthorizer is satisfied by *Authorizer.
type UsernameAuthorizer interface {
	Authorize(ctx context.Context, username string) (Principal, error)
}

// DenialRecorder records refused requests. *auditlog.Logger implements it.
type DenialRecorder interface {
	AuthorizationDenied(ctx context.Context, username, operation string)
}

// Guard is the check every protected endpoint runs before touching a store.
type Guard struct {
	Auth    UsernameAuthorizer
	Denials DenialRecorder
	Log     *zap.Logger
}

// Check authorizes username for operation under the short timeout. Denials
// are recorded; lookup failures are returned as is.
func (g Guard) Check(ctx context.Context, username, operation string) (Principal, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), g.Log, "authorize")
	defer cancel()

	p, err := g.Auth.Authorize(ctx, username)
	if errors.Is(err, ErrUnauthorized) {
		if g.Denials != nil {
			g.Denials.AuthorizationDenied(ctx, username, operation)
		}
		return Principal{}, err
	}
	if err != nil {
		return Principal{}, err
	}
	return p, nil
}
