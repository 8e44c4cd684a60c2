// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hooks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Subscription is a handle for one registered subscriber.
type Subscription struct {
	ID          string
	Event       Event
	Callback    func(*EventContext)
	Unsubscribe func()
}

// EventBus fans pipeline events out to subscribers. Async publication goes
// through a bounded queue; when the queue is full events are dropped rather
// than blocking the pipeline.
type EventBus struct {
	subscribers  map[Event][]*Subscription
	mu           sync.RWMutex
	eventQueue   chan *EventContext
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	shutdown     bool
}

// NewEventBus creates a bus and starts its queue processor.
func NewEventBus() *EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	bus := &EventBus{
		subscribers: make(map[Event][]*Subscription),
		eventQueue:  make(chan *EventContext, 1000),
		ctx:         ctx,
		cancel:      cancel,
	}
	go bus.processQueue()
	return bus
}

// Subscribe registers a callback for one event type.
func (b *EventBus) Subscribe(event Event, callback func(*EventContext)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		ID:       uuid.New().String(),
		Event:    event,
		Callback: callback,
	}
	sub.Unsubscribe = func() { b.unsubscribe(sub) }

	b.subscribers[event] = append(b.subscribers[event], sub)
	return sub
}

func (b *EventBus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[sub.Event]
	for i, s := range subs {
		if s.ID == sub.ID {
			b.subscribers[sub.Event] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

// Publish delivers an event to all subscribers synchronously. A panicking
// subscriber never takes the publisher down.
func (b *EventBus) Publish(ctx *EventContext) {
	b.mu.RLock()
	subs := b.subscribers[ctx.Event]
	activeSubs := make([]*Subscription, len(subs))
	copy(activeSubs, subs)
	b.mu.RUnlock()

	for _, sub := range activeSubs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("panic in event subscriber for %s: %v", ctx.Event, r)
				}
			}()
			sub.Callback(ctx)
		}()
	}
}

// PublishAsync queues an event for background delivery.
func (b *EventBus) PublishAsync(ctx *EventContext) {
	b.mu.RLock()
	isShutdown := b.shutdown
	b.mu.RUnlock()
	if isShutdown {
		return
	}

	select {
	case <-b.ctx.Done():
		return
	case b.eventQueue <- ctx:
	default:
		log.Warnf("event queue full, dropping event: %s", ctx.Event)
	}
}

func (b *EventBus) processQueue() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventQueue:
			if !ok {
				return
			}
			if event != nil {
				b.Publish(event)
			}
		}
	}
}

// Shutdown stops queue processing. Safe to call more than once.
func (b *EventBus) Shutdown() {
	b.shutdownOnce.Do(func() {
		b.mu.Lock()
		b.shutdown = true
		b.mu.Unlock()

		b.cancel()
		close(b.eventQueue)
	})
}
