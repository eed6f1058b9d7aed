// Package events implements the gateway's subscriber broker: the fan-out of
// committed rounds and freshly admitted transactions to live WebSocket
// listeners (spec.md §6 /updates, /mempool).
package events

import (
	"log"
	"sync"

	"github.com/tolelom/casinochain/core"
)

// UpdateKind selects which frame shape an Update carries, mirroring the
// Update{Seed | Events | FilteredEvents} union spec.md §6 describes for the
// /updates stream.
type UpdateKind byte

const (
	UpdateSeed UpdateKind = iota
	UpdateEvents
	UpdateFilteredEvents
	UpdatePending // /mempool stream only
)

// Update is one frame broadcast to a subscriber.
type Update struct {
	Kind         UpdateKind
	Seed         *core.SeedSubmission
	Events       []core.Output
	Positions    []uint64 // FilteredEvents: the caller-supplied positions Events corresponds to
	Transactions []core.Transaction
}

// Handler is a callback invoked for every published Update.
type Handler func(Update)

// Broker is a subscribe/publish fan-out broadcaster, one per live stream
// (the gateway holds a separate Broker for /updates and for /mempool).
// Subscribers are keyed by an opaque ID so a closed WebSocket connection can
// unsubscribe itself without tearing down the broker.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[uint64]Handler
	nextID      uint64
}

// NewBroker creates a Broker with no subscribers.
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[uint64]Handler)}
}

// Subscribe registers h and returns an ID for later Unsubscribe.
func (b *Broker) Subscribe(h Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = h
	return id
}

// Unsubscribe removes the subscriber registered under id, a no-op if it is
// already gone.
func (b *Broker) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, id)
}

// Publish delivers u to every current subscriber. Each handler is guarded by
// panic recovery so one misbehaving WebSocket writer cannot halt the
// broadcaster or take down block production, which runs on the same process.
func (b *Broker) Publish(u Update) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subscribers))
	for _, h := range b.subscribers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[events] subscriber panicked: %v", r)
				}
			}()
			h(u)
		}()
	}
}
