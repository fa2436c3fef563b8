package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/16 12:33
 * @file: event_test.go
 * @description:
 */

type TestEvent struct {
	Name   string
	Detail Detail
}

type Detail struct {
	Type string
	Data string
}

func (e TestEvent) EventName() string {
	return e.Name
}

func (e TestEvent) EventType() string {
	return e.Detail.Type
}

type recordingHandler struct {
	mu   sync.Mutex
	seen []string
}

func (h *recordingHandler) Handle(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if customEvent, ok := event.(TestEvent); ok {
		h.seen = append(h.seen, customEvent.Detail.Data)
	}
}

func TestEventBus_Publish(t *testing.T) {
	bus := NewEventBus()
	h := &recordingHandler{}
	bus.RegisterHandler("test", h)

	bus.Publish(TestEvent{Name: "test", Detail: Detail{Type: "t", Data: "one"}})
	bus.Publish(TestEvent{Name: "other", Detail: Detail{Type: "t", Data: "two"}})

	assert.Equal(t, []string{"one"}, h.seen)
	assert.True(t, bus.HasHandlers("test"))
	assert.False(t, bus.HasHandlers("other"))
}

func TestEventBus_PanickingHandler(t *testing.T) {
	bus := NewEventBus()
	h := &recordingHandler{}
	bus.Subscribe("test", func(Event) { panic("boom") })
	bus.RegisterHandler("test", h)

	assert.NotPanics(t, func() {
		bus.Consume(TestEvent{Name: "test", Detail: Detail{Data: "after"}})
	})
	assert.Equal(t, []string{"after"}, h.seen)
}

func TestEventBus_Concurrent(t *testing.T) {
	bus := NewEventBus()
	h := &recordingHandler{}
	bus.RegisterHandler("test", h)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Publish(TestEvent{Name: "test", Detail: Detail{Data: "x"}})
		}()
		go func() {
			defer wg.Done()
			bus.Subscribe("noop", func(Event) {})
		}()
	}
	wg.Wait()
	assert.Len(t, h.seen, 20)
}
