// Package bus implements the subscriber set and fan-out primitive shared by
// the communications driver and the endpoint consumer queue: a set of
// callbacks keyed by subscription identity, notified on a snapshot so the
// set may be mutated safely from within a callback, with failure-aware
// deregistration for subscribers that do not tolerate errors.
//
// This is a narrowed descendant of the teacher's topic-trie publish/
// subscribe bus: orbitalcoms has exactly one implicit topic, the driver's
// incoming message stream, so the trie and wildcard matching are dropped
// and what remains is the flat subscriber-set-plus-snapshot-notify core,
// including its tryDeliver-style best-effort failure handling.
package bus

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"orbitalcoms/message"
)

// Callback receives one delivered message. It runs synchronously on the
// goroutine calling Notify, which for the driver is the read worker.
type Callback func(*message.Message)

// Subscription is a registered callback plus its error-tolerance policy.
type Subscription struct {
	id             uuid.UUID
	callback       Callback
	tolerateErrors bool
	oneShot        bool

	set *Set
}

// ID identifies the subscription for logging and map-keying purposes.
func (s *Subscription) ID() uuid.UUID { return s.id }

// Unregister removes the subscription from its owning set. Safe to call
// more than once and safe to call from within the subscription's own
// callback.
func (s *Subscription) Unregister() {
	if s.set != nil {
		s.set.Unregister(s)
	}
}

// Set is a thread-safe collection of subscriptions, notified in an
// unspecified order on every message.
type Set struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription
	logger *slog.Logger
}

// NewSet returns an empty subscriber set. A nil logger defaults to
// slog.Default().
func NewSet(logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{subs: make(map[uuid.UUID]*Subscription), logger: logger}
}

// Register adds a persistent subscription and returns it.
func (s *Set) Register(cb Callback, tolerateErrors bool) *Subscription {
	return s.add(cb, tolerateErrors, false)
}

// RegisterOneShot adds a subscription that deregisters itself right after
// its callback is invoked for the first time.
func (s *Set) RegisterOneShot(cb Callback, tolerateErrors bool) *Subscription {
	return s.add(cb, tolerateErrors, true)
}

func (s *Set) add(cb Callback, tolerateErrors, oneShot bool) *Subscription {
	sub := &Subscription{id: uuid.New(), callback: cb, tolerateErrors: tolerateErrors, oneShot: oneShot, set: s}
	s.mu.Lock()
	s.subs[sub.id] = sub
	s.mu.Unlock()
	return sub
}

// Unregister removes a subscription. Idempotent.
func (s *Set) Unregister(sub *Subscription) {
	if sub == nil {
		return
	}
	s.mu.Lock()
	delete(s.subs, sub.id)
	s.mu.Unlock()
}

// Len reports the number of currently registered subscriptions.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Notify delivers m to a snapshot of the current subscriber set, so a
// callback is free to register or unregister subscriptions without
// deadlocking or corrupting the iteration. A subscriber whose callback
// panics is deregistered unless it opted into tolerateErrors. A one-shot
// subscriber is deregistered after its callback runs, whether or not that
// run panicked.
func (s *Set) Notify(m *message.Message) {
	s.mu.Lock()
	snapshot := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		snapshot = append(snapshot, sub)
	}
	s.mu.Unlock()

	for _, sub := range snapshot {
		s.deliver(sub, m)
	}
}

func (s *Set) deliver(sub *Subscription, m *message.Message) {
	defer func() {
		if sub.oneShot {
			s.Unregister(sub)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			if !sub.tolerateErrors {
				s.Unregister(sub)
			}
			s.logger.Warn("bus: subscriber callback panicked",
				slog.String("subscription", sub.id.String()), slog.Any("error", r),
				slog.Bool("tolerated", sub.tolerateErrors))
		}
	}()
	sub.callback(m)
}
