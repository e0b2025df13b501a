// Package authz decides which actor may perform which session action.
package authz

import (
	"context"
	"fmt"

	"github.com/mcoot/gamesessions/internal/model"
)

// Action names a guarded session operation
type Action string

const (
	ActionStart       Action = "start"
	ActionEnd         Action = "end"
	ActionUpdateState Action = "update_state"
	ActionDelete      Action = "delete"
)

// Policy authorizes an action on a session
type Policy interface {
	Authorize(ctx context.Context, action Action, session *model.Session) error
}

// Policy names accepted by Parse
const (
	PolicyOpen     = "open"
	PolicyHostOnly = "host"
)

// Parse returns the policy with the given name
func Parse(name string) (Policy, error) {
	switch name {
	case "", PolicyOpen:
		return Open{}, nil
	case PolicyHostOnly:
		return HostOnly{}, nil
	default:
		return nil, fmt.Errorf("unknown authorization policy %q", name)
	}
}

// Open allows every action
type Open struct{}

func (Open) Authorize(context.Context, Action, *model.Session) error {
	return nil
}

// HostOnly restricts every guarded action to the session's host
type HostOnly struct{}

func (HostOnly) Authorize(ctx context.Context, _ Action, session *model.Session) error {
	actor, ok := ActorFrom(ctx)
	if !ok || actor != session.HostID {
		return model.ErrNotHost
	}
	return nil
}

type contextKey struct{}

// WithActor returns a context carrying the acting user
func WithActor(ctx context.Context, actor model.PlayerID) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// ActorFrom returns the acting user, if any
func ActorFrom(ctx context.Context) (model.PlayerID, bool) {
	actor, ok := ctx.Value(contextKey{}).(model.PlayerID)
	return actor, ok && actor != ""
}
