// Package store defines the persistence collaborator used by the booking
// core. A Backend holds whole collections of JSON records keyed by stable,
// namespaced strings; the booking store never touches the physical medium
// directly.
package store

import (
	"context"
	"encoding/json"
)

// Collection keys. One per entity kind plus the current-actor pointer and the
// salon profile blob.
const (
	KeyServices      = "salon:services"
	KeyProfessionals = "salon:professionals"
	KeyAppointments  = "salon:appointments"
	KeyUsers         = "salon:users"
	KeyCurrentUser   = "salon:current_user"
	KeyProfile       = "salon:profile"
)

// Backend reads and writes whole collections. ReadCollection returns an empty
// slice when the key is absent or its payload is corrupt; readers never see a
// parse error. WriteCollection replaces the collection atomically or returns
// an error leaving the previous contents intact.
type Backend interface {
	ReadCollection(ctx context.Context, key string) ([]json.RawMessage, error)
	WriteCollection(ctx context.Context, key string, records []json.RawMessage) error
}
