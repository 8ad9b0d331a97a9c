// Package policy decides whether the current identity may perform an action.
//
// Every service operation calls Authorize before it reads or mutates a store,
// so an anonymous caller is always denied before any lookup happens.
package policy

import (
	"context"
	"fmt"
	"log/slog"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
)

// UnauthorizedMessage is the user-facing text of every denial.
const UnauthorizedMessage = "Access unauthorized."

// Identity is the possibly-anonymous caller of an operation.
type Identity struct {
	id    uint
	known bool
}

// Anonymous returns the identity of a caller without a session.
func Anonymous() Identity {
	return Identity{}
}

// As returns the identity of a signed-in user.
func As(userID uint) Identity {
	return Identity{id: userID, known: true}
}

// UserID returns the user id and whether the identity is present.
func (i Identity) UserID() (uint, bool) {
	return i.id, i.known
}

// IsAnonymous reports whether no user is bound.
func (i Identity) IsAnonymous() bool {
	return !i.known
}

func (i Identity) String() string {
	if !i.known {
		return "anonymous"
	}
	return fmt.Sprintf("user:%d", i.id)
}

// Action names an operation guarded by the policy.
type Action string

const (
	CreateMessage Action = "create_message"
	DeleteMessage Action = "delete_message"
	ViewMessage   Action = "view_message"
	ViewProfile   Action = "view_profile"
	ViewFollowing Action = "view_following"
	ViewFollowers Action = "view_followers"
	ViewLikes     Action = "view_likes"
	Follow        Action = "follow"
	Unfollow      Action = "unfollow"
	ToggleLike    Action = "toggle_like"
	EditProfile   Action = "edit_profile"
	ViewTimeline  Action = "view_timeline"
	ViewFeed      Action = "view_feed"
)

// ownerBound lists the actions that also require the identity to match the subject.
var ownerBound = map[Action]bool{
	DeleteMessage: true,
	Unfollow:      true,
	EditProfile:   true,
}

// Authorize returns nil when current may perform action, or an Unauthorized
// AppError. subject is the owner (or follower) id the action touches; it is
// ignored for actions that only need a signed-in user.
func Authorize(current Identity, action Action, subject uint) error {
	return AuthorizeContext(context.Background(), current, action, subject)
}

// AuthorizeContext is Authorize with a context for the denial log record.
func AuthorizeContext(ctx context.Context, current Identity, action Action, subject uint) error {
	id, ok := current.UserID()
	if !ok {
		return deny(ctx, current, action)
	}
	if ownerBound[action] && id != subject {
		return deny(ctx, current, action)
	}
	return nil
}

// RequireUser checks only that an identity is present and returns its id.
// Owner-bound actions call it before looking up the subject, then Authorize
// once the owner is known.
func RequireUser(ctx context.Context, current Identity, action Action) (uint, error) {
	id, ok := current.UserID()
	if !ok {
		return 0, deny(ctx, current, action)
	}
	return id, nil
}

func deny(ctx context.Context, current Identity, action Action) error {
	observability.PolicyDenials.WithLabelValues(string(action)).Inc()
	middleware.Logger.InfoContext(ctx, "policy denial",
		slog.String("action", string(action)),
		slog.String("identity", current.String()),
	)
	return models.NewUnauthorizedError(UnauthorizedMessage)
}
