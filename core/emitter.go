package session

import (
	"sync"

	"github.com/parley-ai/parley-core/core/events"
)

// eventEmitter fans session events out to subscribers registered per kind.
// Registration and emission may happen from different goroutines.
type eventEmitter struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[events.Kind]map[int]func(events.Event)
}

func newEventEmitter() *eventEmitter {
	return &eventEmitter{handlers: map[events.Kind]map[int]func(events.Event){}}
}

// on registers a handler for one event kind and returns its unsubscribe
// function. Unsubscribing twice is harmless.
func (e *eventEmitter) on(kind events.Kind, handler func(events.Event)) func() {
	if handler == nil {
		return func() {}
	}

	e.mu.Lock()
	e.nextID++
	id := e.nextID
	if e.handlers[kind] == nil {
		e.handlers[kind] = map[int]func(events.Event){}
	}
	e.handlers[kind][id] = handler
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.handlers[kind], id)
		e.mu.Unlock()
	}
}

func (e *eventEmitter) emit(event events.Event) {
	e.mu.RLock()
	handlers := make([]func(events.Event), 0, len(e.handlers[event.Kind()]))
	for _, handler := range e.handlers[event.Kind()] {
		handlers = append(handlers, handler)
	}
	e.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
