// Package salon holds the salon-wide profile: the display name, contact
// details and branding shown on the public booking page and in the admin
// settings screen.
package salon

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bellasalon/booking-platform/internal/store"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Profile is the salon's public identity.
type Profile struct {
	Name        string `json:"name"`
	Logo        string `json:"logo"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
}

// ProfilePatch carries partial updates. Nil fields keep their stored value.
type ProfilePatch struct {
	Name        *string `json:"name,omitempty"`
	Logo        *string `json:"logo,omitempty"`
	Description *string `json:"description,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Website     *string `json:"website,omitempty"`
}

func (p ProfilePatch) apply(profile *Profile) {
	if p.Name != nil {
		profile.Name = *p.Name
	}
	if p.Logo != nil {
		profile.Logo = *p.Logo
	}
	if p.Description != nil {
		profile.Description = *p.Description
	}
	if p.Address != nil {
		profile.Address = *p.Address
	}
	if p.Phone != nil {
		profile.Phone = *p.Phone
	}
	if p.Email != nil {
		profile.Email = *p.Email
	}
	if p.Website != nil {
		profile.Website = *p.Website
	}
}

// DefaultProfile is returned until the salon saves its own details.
func DefaultProfile() Profile {
	return Profile{
		Name:        "Salão de Beleza",
		Description: "Seu salão de beleza de confiança",
		Address:     "Rua das Flores, 123 - Centro",
		Phone:       "(63) 99999-9999",
		Email:       "contato@salao.com",
		Website:     "www.salao.com",
	}
}

// Store reads and writes the salon profile through the persistence
// collaborator and notifies subscribers of changes.
type Store struct {
	backend store.Backend
	logger  *logging.Logger

	mu        sync.Mutex
	listeners []*listener
}

type listener struct {
	cb func(Profile)
}

// NewStore creates a profile store.
func NewStore(backend store.Backend, logger *logging.Logger) *Store {
	if backend == nil {
		panic("salon: backend required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// Get returns the stored profile, or DefaultProfile when nothing has been
// saved yet or the stored record cannot be decoded.
func (s *Store) Get(ctx context.Context) (Profile, error) {
	raw, err := s.backend.ReadCollection(ctx, store.KeyProfile)
	if err != nil {
		return Profile{}, fmt.Errorf("salon: read profile: %w", err)
	}
	if len(raw) == 0 {
		return DefaultProfile(), nil
	}
	var profile Profile
	if err := json.Unmarshal(raw[0], &profile); err != nil {
		s.logger.Warn("stored salon profile is corrupt, using defaults", "error", err)
		return DefaultProfile(), nil
	}
	return profile, nil
}

// Update merges patch into the stored profile, persists the result and
// broadcasts it. The merged profile is returned.
func (s *Store) Update(ctx context.Context, patch ProfilePatch) (Profile, error) {
	profile, err := s.Get(ctx)
	if err != nil {
		return Profile{}, err
	}
	patch.apply(&profile)

	data, err := json.Marshal(profile)
	if err != nil {
		return Profile{}, fmt.Errorf("salon: marshal profile: %w", err)
	}
	if err := s.backend.WriteCollection(ctx, store.KeyProfile, []json.RawMessage{data}); err != nil {
		return Profile{}, fmt.Errorf("salon: write profile: %w", err)
	}

	// Delivery runs under the lock so an unsubscribe issued during a
	// broadcast blocks until the broadcast finishes.
	s.mu.Lock()
	for _, l := range s.listeners {
		l.cb(profile)
	}
	s.mu.Unlock()
	return profile, nil
}

// OnChanged registers cb and invokes it immediately with the current
// profile. The returned func removes the registration. A callback is never
// invoked after its unsubscribe call returns; callbacks must not call back
// into the store.
func (s *Store) OnChanged(ctx context.Context, cb func(Profile)) (func(), error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	entry := &listener{cb: cb}
	s.mu.Lock()
	s.listeners = append(s.listeners, entry)
	cb(current)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l == entry {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}, nil
}
