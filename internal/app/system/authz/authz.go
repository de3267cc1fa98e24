// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when the username is blank or is not a
// registered teacher.
var ErrUnauthorized = errors.New("unauthorized")

// TeacherFinder reports whether a teacher with the given username exists.
type TeacherFinder interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// Principal is proof that a username passed the teacher check. Only
// Authorizer can construct a valid one; the zero value is not valid.
type Principal struct {
	username string
}

// Username returns the authorized teacher's username.
func (p Principal) Username() string { return p.username }

// Valid reports whether p came from a successful Authorize call.
func (p Principal) Valid() bool { return p.username != "" }

// Authorizer checks usernames against the teacher collection.
type Authorizer struct {
	teachers TeacherFinder
}

// New creates an Authorizer backed by teachers.
func New(teachers TeacherFinder) *Authorizer {
	return &Authorizer{teachers: teachers}
}

// Authorize returns a Principal when username names an existing teacher.
// Presence is the only check; there is no role or permission model.
// A lookup failure is returned wrapped, not as ErrUnauthorized.
func (a *Authorizer) Authorize(ctx context.Context, username string) (Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Principal{}, ErrUnauthorized
	}
	ok, err := a.teachers.Exists(ctx, username)
	if err != nil {
		return Principal{}, fmt.Errorf("look up teacher: %w", err)
	}
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	return Principal{username: username}, nil
}
