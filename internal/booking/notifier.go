package booking

import (
	"context"
	"sync"

	"github.com/bellasalon/booking-platform/internal/auth"
	"github.com/bellasalon/booking-platform/internal/observability/metrics"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Notifier broadcasts collection snapshots to subscribers. Subscribing
// replays the current snapshot immediately and synchronously; every
// successful mutation re-reads the collection and delivers the new snapshot
// to live subscribers in subscription order. A callback is never invoked
// after its unsubscribe call returns.
//
// Appointment subscriptions carry a viewer. Non-privileged viewers receive a
// projection of only the appointments they created; this filtering happens
// at delivery time, there is no second stored collection.
//
// Delivery runs under the notifier's lock, which is what makes the
// no-callback-after-unsubscribe guarantee hold: an unsubscribe issued during
// a broadcast blocks until the broadcast finishes. Callbacks therefore must
// not call back into the notifier.
type Notifier struct {
	store   *Store
	logger  *logging.Logger
	metrics *metrics.BookingMetrics

	mu              sync.Mutex
	serviceSubs     []*serviceSub
	professionalSub []*professionalSub
	appointmentSubs []*appointmentSub
}

type serviceSub struct {
	cb func([]Service)
}

type professionalSub struct {
	cb func([]Professional)
}

type appointmentSub struct {
	viewer *auth.Profile
	cb     func([]Appointment)
}

// NewNotifier creates a notifier over the entity store. Metrics may be nil.
func NewNotifier(store *Store, logger *logging.Logger, m *metrics.BookingMetrics) *Notifier {
	if store == nil {
		panic("booking: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{store: store, logger: logger, metrics: m}
}

// SubscribeServices registers cb and invokes it immediately with the current
// snapshot. The returned func unsubscribes; calling it more than once is
// harmless.
func (n *Notifier) SubscribeServices(ctx context.Context, cb func([]Service)) (func(), error) {
	items, err := n.store.Services(ctx)
	if err != nil {
		return nil, err
	}

	entry := &serviceSub{cb: cb}
	n.mu.Lock()
	n.serviceSubs = append(n.serviceSubs, entry)
	n.metrics.SetSubscribers("services", len(n.serviceSubs))
	cb(items)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.serviceSubs {
			if s == entry {
				n.serviceSubs = append(n.serviceSubs[:i], n.serviceSubs[i+1:]...)
				n.metrics.SetSubscribers("services", len(n.serviceSubs))
				return
			}
		}
	}, nil
}

// SubscribeProfessionals registers cb with the same contract as
// SubscribeServices.
func (n *Notifier) SubscribeProfessionals(ctx context.Context, cb func([]Professional)) (func(), error) {
	items, err := n.store.Professionals(ctx)
	if err != nil {
		return nil, err
	}

	entry := &professionalSub{cb: cb}
	n.mu.Lock()
	n.professionalSub = append(n.professionalSub, entry)
	n.metrics.SetSubscribers("professionals", len(n.professionalSub))
	cb(items)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.professionalSub {
			if s == entry {
				n.professionalSub = append(n.professionalSub[:i], n.professionalSub[i+1:]...)
				n.metrics.SetSubscribers("professionals", len(n.professionalSub))
				return
			}
		}
	}, nil
}

// SubscribeAppointments registers cb scoped to viewer. Privileged viewers
// receive the unfiltered snapshot; everyone else only appointments they
// created (an absent viewer sees public bookings).
func (n *Notifier) SubscribeAppointments(ctx context.Context, viewer *auth.Profile, cb func([]Appointment)) (func(), error) {
	items, err := n.store.Appointments(ctx)
	if err != nil {
		return nil, err
	}

	entry := &appointmentSub{viewer: viewer, cb: cb}
	n.mu.Lock()
	n.appointmentSubs = append(n.appointmentSubs, entry)
	n.metrics.SetSubscribers("appointments", len(n.appointmentSubs))
	cb(FilterForViewer(items, viewer))
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.appointmentSubs {
			if s == entry {
				n.appointmentSubs = append(n.appointmentSubs[:i], n.appointmentSubs[i+1:]...)
				n.metrics.SetSubscribers("appointments", len(n.appointmentSubs))
				return
			}
		}
	}, nil
}

// FilterForViewer projects an appointment snapshot for a viewer. The
// projection keeps order; it copies nothing extra since snapshots are
// already caller-owned.
func FilterForViewer(items []Appointment, viewer *auth.Profile) []Appointment {
	if viewer.Privileged() {
		return items
	}
	creator := PublicCreatorID
	if viewer != nil {
		creator = viewer.ID
	}
	out := make([]Appointment, 0, len(items))
	for _, a := range items {
		if a.CreatorID == creator {
			out = append(out, a)
		}
	}
	return out
}

// publishServices re-reads the collection and fans it out. Called by the
// Manager after a successful mutation only, so a failed write never produces
// a partial broadcast.
func (n *Notifier) publishServices(ctx context.Context) {
	items, err := n.store.Services(ctx)
	if err != nil {
		n.logger.Error("snapshot re-read failed, broadcast skipped", "collection", "services", "error", err)
		return
	}
	n.mu.Lock()
	for _, s := range n.serviceSubs {
		s.cb(items)
	}
	n.mu.Unlock()
	n.metrics.ObserveBroadcast("services")
}

func (n *Notifier) publishProfessionals(ctx context.Context) {
	items, err := n.store.Professionals(ctx)
	if err != nil {
		n.logger.Error("snapshot re-read failed, broadcast skipped", "collection", "professionals", "error", err)
		return
	}
	n.mu.Lock()
	for _, s := range n.professionalSub {
		s.cb(items)
	}
	n.mu.Unlock()
	n.metrics.ObserveBroadcast("professionals")
}

func (n *Notifier) publishAppointments(ctx context.Context) {
	items, err := n.store.Appointments(ctx)
	if err != nil {
		n.logger.Error("snapshot re-read failed, broadcast skipped", "collection", "appointments", "error", err)
		return
	}
	n.mu.Lock()
	for _, s := range n.appointmentSubs {
		s.cb(FilterForViewer(items, s.viewer))
	}
	n.mu.Unlock()
	n.metrics.ObserveBroadcast("appointments")
}
