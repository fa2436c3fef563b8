package event

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/16 12:19
 * @file: event.go
 * @description:
 */

type Event interface {
	// EventName returns the name handlers subscribe to
	EventName() string
	// EventType returns the type of the event
	EventType() string
}

type EventHandler interface {
	Handle(event Event)
}

// HandlerFunc adapts a plain function to EventHandler.
type HandlerFunc func(event Event)

func (f HandlerFunc) Handle(event Event) {
	f(event)
}
