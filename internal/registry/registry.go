// Package registry owns the chain-level event subscriptions shared by all
// connected clients. Subscriptions are attached when the first client
// connects and detached when the last one leaves.
package registry

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"notifyScope/internal/model"
)

// Handle is one active chain subscription owned by the registry.
type Handle interface {
	Unsubscribe()
}

// Subscriber creates chain event subscriptions.
type Subscriber interface {
	SubscribeEvent(ctx context.Context, programAddress string, spec model.EventSpec, handler func(model.RawEvent)) (Handle, error)
}

// EventSink consumes raw events delivered by active subscriptions.
type EventSink interface {
	Handle(ctx context.Context, source model.ProgramEndpoint, ev model.RawEvent)
}

// Registry tracks, per program endpoint, the set of active subscriptions
// keyed by event name. All mutation is serialized by one mutex, so a detach
// racing an attach can neither orphan nor duplicate a subscription.
type Registry struct {
	baseCtx   context.Context
	client    Subscriber
	endpoints []model.ProgramEndpoint
	sink      EventSink
	logger    *zap.Logger

	mu      sync.Mutex
	conns   int
	handles map[string]map[string]Handle
}

// New builds a Registry over the given program endpoints. Subscriptions are
// shared infrastructure, so they live under baseCtx rather than under any
// single client's connection.
func New(baseCtx context.Context, client Subscriber, endpoints []model.ProgramEndpoint, sink EventSink, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		baseCtx:   baseCtx,
		client:    client,
		endpoints: endpoints,
		sink:      sink,
		logger:    logger,
		handles:   make(map[string]map[string]Handle),
	}
}

// ClientConnected records one more active client and attaches all endpoints
// on the 0 to 1 transition.
func (r *Registry) ClientConnected() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns++
	if r.conns != 1 {
		return
	}
	for _, endpoint := range r.endpoints {
		r.attachLocked(r.baseCtx, endpoint)
	}
}

// ClientDisconnected records one less active client and detaches all
// endpoints on the 1 to 0 transition.
func (r *Registry) ClientDisconnected() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conns == 0 {
		return
	}
	r.conns--
	if r.conns != 0 {
		return
	}
	for _, endpoint := range r.endpoints {
		r.detachLocked(endpoint)
	}
}

// Attach ensures every event type the endpoint declares has exactly one
// active subscription. Event types that are already subscribed are left
// untouched, and a failed subscribe skips only that event type.
func (r *Registry) Attach(ctx context.Context, endpoint model.ProgramEndpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attachLocked(ctx, endpoint)
}

// Detach removes every subscription owned for the endpoint, making it
// eligible for a fresh Attach.
func (r *Registry) Detach(endpoint model.ProgramEndpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detachLocked(endpoint)
}

func (r *Registry) attachLocked(ctx context.Context, endpoint model.ProgramEndpoint) {
	if endpoint.Address == "" {
		r.logger.Warn("program has no address, skipping", zap.String("program", endpoint.Name))
		return
	}

	active := r.handles[endpoint.Address]
	if active == nil {
		active = make(map[string]Handle)
		r.handles[endpoint.Address] = active
	}

	for _, spec := range endpoint.Events {
		if _, ok := active[spec.Name]; ok {
			continue
		}

		source := endpoint
		handle, err := r.client.SubscribeEvent(ctx, endpoint.Address, spec, func(ev model.RawEvent) {
			r.sink.Handle(ctx, source, ev)
		})
		if err != nil {
			r.logger.Error("subscribe failed",
				zap.String("program", endpoint.Name),
				zap.String("event", spec.Name),
				zap.Error(err),
			)
			continue
		}
		active[spec.Name] = handle
	}

	r.logger.Info("event listeners attached",
		zap.String("program", endpoint.Name),
		zap.Int("subscriptions", len(active)),
	)
}

func (r *Registry) detachLocked(endpoint model.ProgramEndpoint) {
	active := r.handles[endpoint.Address]
	if len(active) == 0 {
		delete(r.handles, endpoint.Address)
		return
	}

	for name, handle := range active {
		handle.Unsubscribe()
		delete(active, name)
	}
	delete(r.handles, endpoint.Address)

	r.logger.Info("event listeners detached", zap.String("program", endpoint.Name))
}

// ActiveEvents returns the sorted event names currently subscribed for a
// program address.
func (r *Registry) ActiveEvents(address string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.handles[address]))
	for name := range r.handles[address] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Connections returns the current active client count.
func (r *Registry) Connections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns
}
