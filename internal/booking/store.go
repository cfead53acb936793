package booking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bellasalon/booking-platform/internal/store"
)

// Store is the entity store: typed, ordered collections persisted through a
// store.Backend. It owns the canonical copies; every read hands out decoded
// copies, never references shared with other readers. One Store instance per
// process, constructed explicitly and passed to whoever needs it.
type Store struct {
	backend store.Backend
}

// NewStore creates an entity store over the given backend.
func NewStore(backend store.Backend) *Store {
	if backend == nil {
		panic("booking: backend required")
	}
	return &Store{backend: backend}
}

type keyed interface {
	EntityID() string
}

// Services returns the service collection in insertion order.
func (s *Store) Services(ctx context.Context) ([]Service, error) {
	return readAll[Service](ctx, s.backend, store.KeyServices)
}

// PutService upserts a service: replace in place when the id exists, append
// otherwise.
func (s *Store) PutService(ctx context.Context, svc Service) error {
	return upsert(ctx, s.backend, store.KeyServices, svc)
}

// RemoveService deletes by id. Removing a missing id is a no-op.
func (s *Store) RemoveService(ctx context.Context, id string) error {
	return remove[Service](ctx, s.backend, store.KeyServices, id)
}

// Professionals returns the professional collection in insertion order.
func (s *Store) Professionals(ctx context.Context) ([]Professional, error) {
	return readAll[Professional](ctx, s.backend, store.KeyProfessionals)
}

// PutProfessional upserts a professional.
func (s *Store) PutProfessional(ctx context.Context, pro Professional) error {
	return upsert(ctx, s.backend, store.KeyProfessionals, pro)
}

// RemoveProfessional deletes by id. The professional's appointments are left
// untouched; nothing cascades.
func (s *Store) RemoveProfessional(ctx context.Context, id string) error {
	return remove[Professional](ctx, s.backend, store.KeyProfessionals, id)
}

// Appointments returns the appointment collection in insertion order.
func (s *Store) Appointments(ctx context.Context) ([]Appointment, error) {
	return readAll[Appointment](ctx, s.backend, store.KeyAppointments)
}

// PutAppointment upserts an appointment.
func (s *Store) PutAppointment(ctx context.Context, apt Appointment) error {
	return upsert(ctx, s.backend, store.KeyAppointments, apt)
}

// RemoveAppointment deletes by id.
func (s *Store) RemoveAppointment(ctx context.Context, id string) error {
	return remove[Appointment](ctx, s.backend, store.KeyAppointments, id)
}

// readAll decodes a whole collection. Records that fail to decode are
// skipped rather than poisoning the snapshot; the backend already fails soft
// on wholesale corruption.
func readAll[T any](ctx context.Context, b store.Backend, key string) ([]T, error) {
	raw, err := b.ReadCollection(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("booking: read %s: %w", key, err)
	}
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// upsert rewrites the collection with entity replaced or appended. The write
// is all-or-nothing: on backend failure the previous collection stays
// visible to readers.
func upsert[T keyed](ctx context.Context, b store.Backend, key string, entity T) error {
	items, err := readAll[T](ctx, b, key)
	if err != nil {
		return err
	}
	replaced := false
	for i, item := range items {
		if item.EntityID() == entity.EntityID() {
			items[i] = entity
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, entity)
	}
	return writeAll(ctx, b, key, items)
}

func remove[T keyed](ctx context.Context, b store.Backend, key string, id string) error {
	items, err := readAll[T](ctx, b, key)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if item.EntityID() != id {
			kept = append(kept, item)
		}
	}
	return writeAll(ctx, b, key, kept)
}

func writeAll[T any](ctx context.Context, b store.Backend, key string, items []T) error {
	records := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("booking: marshal %s record: %w", key, err)
		}
		records = append(records, data)
	}
	if err := b.WriteCollection(ctx, key, records); err != nil {
		return fmt.Errorf("booking: write %s: %w", key, err)
	}
	return nil
}
