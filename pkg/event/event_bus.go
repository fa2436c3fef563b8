package event

import (
	"fmt"
	"sync"

	"github.com/go-arcade/agileboard/pkg/log"
)

// EventBus dispatches events synchronously to the handlers registered
// under the event name. A panicking handler is logged and does not stop
// the remaining handlers.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) RegisterHandler(eventName string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventName] = append(eb.handlers[eventName], handler)
}

// Subscribe registers fn for eventName.
func (eb *EventBus) Subscribe(eventName string, fn func(Event)) {
	eb.RegisterHandler(eventName, HandlerFunc(fn))
}

// HasHandlers reports whether anything listens to eventName.
func (eb *EventBus) HasHandlers(eventName string) bool {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventName]) > 0
}

func (eb *EventBus) Publish(event Event) {
	eventName := event.EventName()

	eb.mu.RLock()
	handlers := append([]EventHandler(nil), eb.handlers[eventName]...)
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}
	log.Debugw("publish event", "event", eventName, "type", event.EventType(), "handlers", len(handlers))
	for _, handler := range handlers {
		eb.dispatch(handler, event)
	}
}

func (eb *EventBus) dispatch(handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("event handler panicked", "event", event.EventName(), "panic", fmt.Sprint(r))
		}
	}()
	handler.Handle(event)
}

func (eb *EventBus) Consume(event Event) {
	eb.Publish(event)
}
