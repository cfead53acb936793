// Package auth supplies the actor identity the booking core uses to stamp
// appointment ownership and scope appointment visibility. The credential
// check itself is deliberately trivial; this platform fronts a single salon,
// not an identity provider.
package auth

import (
	"context"
	"errors"
)

// Role classifies an actor. Admins are privileged viewers: they see every
// appointment, everyone else only their own.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"
)

// Profile identifies an authenticated actor.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Privileged reports whether the profile may see all appointments. A nil
// profile is never privileged.
func (p *Profile) Privileged() bool {
	return p != nil && p.Role == RoleAdmin
}

// ErrUnknownUser is returned by SignIn when no profile matches the email.
var ErrUnknownUser = errors.New("auth: unknown user")

// Provider is the authentication collaborator. OnActorChanged follows the
// notifier contract: immediate synchronous replay of the current actor on
// subscribe, broadcast on every change, no callback after unsubscribe
// returns.
type Provider interface {
	CurrentActor(ctx context.Context) (*Profile, error)
	SignIn(ctx context.Context, email, secret string) (*Profile, error)
	SignOut(ctx context.Context) error
	OnActorChanged(ctx context.Context, cb func(*Profile)) (func(), error)
}
