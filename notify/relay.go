// Package notify is the side channel between the session core and the
// rendering layer. The core publishes typed events; whoever renders may
// subscribe. Publishing is fire-and-forget: nothing in the session
// lifecycle waits on, or fails because of, a listener.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// subscriberBuffer bounds how far a slow subscriber can fall behind before
// events are dropped.
const subscriberBuffer = 8

// CreditDeduction is published after the remote daily login deduction has
// actually reduced the balance.
type CreditDeduction struct {
	ID               string    // Unique event identifier
	CreditsChanged   int       // Number of credits deducted
	NewBalance       int       // Balance after the deduction
	LowCreditWarning bool      // Remote-reported low balance flag
	OccurredAt       time.Time // When the deduction was observed client-side
}

// Relay fans events out to subscribers. A Relay with no subscribers is
// valid; publishes are then no-ops.
type Relay struct {
	mu            sync.Mutex
	deductionSubs map[string]chan CreditDeduction
	animationSubs map[string]chan struct{}
}

// NewRelay creates an empty relay.
func NewRelay() *Relay {
	return &Relay{
		deductionSubs: make(map[string]chan CreditDeduction),
		animationSubs: make(map[string]chan struct{}),
	}
}

// SubscribeDeductions returns a channel of deduction events and a cancel
// function. The channel is closed on cancel.
func (r *Relay) SubscribeDeductions() (<-chan CreditDeduction, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan CreditDeduction, subscriberBuffer)
	r.deductionSubs[id] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.deductionSubs[id]; ok {
			delete(r.deductionSubs, id)
			close(sub)
		}
	}
}

// SubscribeAnimations returns a channel that receives one signal per
// deduction animation, and a cancel function.
func (r *Relay) SubscribeAnimations() (<-chan struct{}, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan struct{}, subscriberBuffer)
	r.animationSubs[id] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.animationSubs[id]; ok {
			delete(r.animationSubs, id)
			close(sub)
		}
	}
}

// PublishDeduction delivers the event to every subscriber without blocking.
// Subscribers that are full miss the event.
func (r *Relay) PublishDeduction(event CreditDeduction) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.deductionSubs {
		select {
		case sub <- event:
		default:
		}
	}
}

// PublishAnimation broadcasts the animate-deduction signal without blocking.
func (r *Relay) PublishAnimation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.animationSubs {
		select {
		case sub <- struct{}{}:
		default:
		}
	}
}
