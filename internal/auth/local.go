package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/bellasalon/booking-platform/internal/store"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Local is a Provider backed by the persistence collaborator: a users
// collection plus a single-record collection holding the current actor id.
// The secret is not verified; this fronts a single salon, not an IdP.
type Local struct {
	backend store.Backend
	logger  *logging.Logger

	mu        sync.Mutex
	listeners []*actorListener
}

type actorListener struct {
	cb func(*Profile)
}

// NewLocal creates a local auth provider.
func NewLocal(backend store.Backend, logger *logging.Logger) *Local {
	if backend == nil {
		panic("auth: backend required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Local{backend: backend, logger: logger}
}

// CurrentActor returns the signed-in profile, or nil when nobody is signed
// in or the stored pointer is dangling.
func (l *Local) CurrentActor(ctx context.Context) (*Profile, error) {
	id, err := l.currentID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	users, err := l.users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			profile := u
			return &profile, nil
		}
	}
	return nil, nil
}

// SignIn matches by email only. Unknown emails fail with ErrUnknownUser.
func (l *Local) SignIn(ctx context.Context, email, _ string) (*Profile, error) {
	users, err := l.users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			if err := l.setCurrentID(ctx, u.ID); err != nil {
				return nil, err
			}
			profile := u
			l.notify(&profile)
			return &profile, nil
		}
	}
	return nil, ErrUnknownUser
}

// SignOut clears the current actor and broadcasts nil.
func (l *Local) SignOut(ctx context.Context) error {
	if err := l.setCurrentID(ctx, ""); err != nil {
		return err
	}
	l.notify(nil)
	return nil
}

// OnActorChanged registers cb, invoking it immediately with the current
// actor. The returned func removes the registration; calling it twice is
// harmless.
//
// Replay and broadcast delivery both run under the provider's lock, so a
// callback is never invoked after its unsubscribe call returns. Callbacks
// must not call back into the provider.
func (l *Local) OnActorChanged(ctx context.Context, cb func(*Profile)) (func(), error) {
	current, err := l.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	entry := &actorListener{cb: cb}
	l.mu.Lock()
	l.listeners = append(l.listeners, entry)
	cb(current)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, lis := range l.listeners {
			if lis == entry {
				l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
				return
			}
		}
	}, nil
}

// EnsureUser creates a profile for email if none exists and returns it.
// Bootstrap seeding uses this for the initial admin account.
func (l *Local) EnsureUser(ctx context.Context, email string, role Role) (*Profile, error) {
	users, err := l.users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			profile := u
			return &profile, nil
		}
	}
	profile := Profile{ID: uuid.NewString(), Email: email, Role: role}
	users = append(users, profile)
	if err := l.writeUsers(ctx, users); err != nil {
		return nil, err
	}
	l.logger.Info("user created", "email", email, "role", role)
	return &profile, nil
}

// notify delivers under the lock so an unsubscribe issued during a
// broadcast blocks until the broadcast finishes.
func (l *Local) notify(p *Profile) {
	l.mu.Lock()
	for _, lis := range l.listeners {
		lis.cb(p)
	}
	l.mu.Unlock()
}

func (l *Local) users(ctx context.Context) ([]Profile, error) {
	raw, err := l.backend.ReadCollection(ctx, store.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("auth: read users: %w", err)
	}
	users := make([]Profile, 0, len(raw))
	for _, r := range raw {
		var u Profile
		if err := json.Unmarshal(r, &u); err != nil {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (l *Local) writeUsers(ctx context.Context, users []Profile) error {
	records := make([]json.RawMessage, 0, len(users))
	for _, u := range users {
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("auth: marshal user: %w", err)
		}
		records = append(records, data)
	}
	if err := l.backend.WriteCollection(ctx, store.KeyUsers, records); err != nil {
		return fmt.Errorf("auth: write users: %w", err)
	}
	return nil
}

func (l *Local) currentID(ctx context.Context) (string, error) {
	raw, err := l.backend.ReadCollection(ctx, store.KeyCurrentUser)
	if err != nil {
		return "", fmt.Errorf("auth: read current actor: %w", err)
	}
	if len(raw) == 0 {
		return "", nil
	}
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw[0], &rec); err != nil {
		return "", nil
	}
	return rec.ID, nil
}

func (l *Local) setCurrentID(ctx context.Context, id string) error {
	var records []json.RawMessage
	if id != "" {
		data, err := json.Marshal(struct {
			ID string `json:"id"`
		}{ID: id})
		if err != nil {
			return fmt.Errorf("auth: marshal current actor: %w", err)
		}
		records = []json.RawMessage{data}
	}
	if err := l.backend.WriteCollection(ctx, store.KeyCurrentUser, records); err != nil {
		return fmt.Errorf("auth: write current actor: %w", err)
	}
	return nil
}
