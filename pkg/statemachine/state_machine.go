// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package statemachine

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Event names the action that caused a transition.
type Event string

// TransitionHook runs after the edge is validated and before the state
// changes. An error aborts the transition.
type TransitionHook[T comparable] func(from, to T, event Event) error

// TransitionError is returned when no edge exists between two states.
type TransitionError[T comparable] struct {
	From  T
	To    T
	Event Event
}

func (e *TransitionError[T]) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("invalid transition: %v → %v (%s)", e.From, e.To, e.Event)
	}
	return fmt.Sprintf("invalid transition: %v → %v", e.From, e.To)
}

// StateMachine is a generic, concurrency-safe finite state machine.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	currentState T

	// from state -> valid next states, in registration order
	validTransitions map[T][]T
	// (from state, event) -> target state
	eventTransitions map[transitionKey[T]]T

	onTransition []TransitionHook[T]
}

type transitionKey[T comparable] struct {
	From  T
	Event Event
}

func New[T comparable]() *StateMachine[T] {
	return &StateMachine[T]{
		validTransitions: make(map[T][]T),
		eventTransitions: make(map[transitionKey[T]]T),
	}
}

func NewWithState[T comparable](initialState T) *StateMachine[T] {
	sm := New[T]()
	sm.currentState = initialState
	return sm
}

// AddEventTransition registers an edge that TriggerEvent can follow.
func (sm *StateMachine[T]) AddEventTransition(from T, event Event, to T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.eventTransitions[transitionKey[T]{From: from, Event: event}] = to
	if !slices.Contains(sm.validTransitions[from], to) {
		sm.validTransitions[from] = append(sm.validTransitions[from], to)
	}
	return sm
}

func (sm *StateMachine[T]) CanTransition(from, to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.validTransitions[from], to)
}

// Target returns the state reached from `from` by event.
func (sm *StateMachine[T]) Target(from T, event Event) (T, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	to, ok := sm.eventTransitions[transitionKey[T]{From: from, Event: event}]
	return to, ok
}

func (sm *StateMachine[T]) Current() T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

func (sm *StateMachine[T]) GetValidNextStates(from T) []T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	result := make([]T, len(sm.validTransitions[from]))
	copy(result, sm.validTransitions[from])
	return result
}

func (sm *StateMachine[T]) OnTransition(h TransitionHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onTransition = append(sm.onTransition, h)
	return sm
}

// Transition moves the machine from `from` to `to`. An unknown edge
// returns *TransitionError; hook errors are returned unwrapped so callers
// can match on their own error types.
func (sm *StateMachine[T]) Transition(from, to T, event Event) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !slices.Contains(sm.validTransitions[from], to) {
		return &TransitionError[T]{From: from, To: to, Event: event}
	}
	for _, h := range sm.onTransition {
		if err := h(from, to, event); err != nil {
			return err
		}
	}
	sm.currentState = to
	return nil
}

// TriggerEvent follows the edge registered for event from the current state.
func (sm *StateMachine[T]) TriggerEvent(event Event) error {
	current := sm.Current()
	to, ok := sm.Target(current, event)
	if !ok {
		return &TransitionError[T]{From: current, Event: event}
	}
	return sm.Transition(current, to, event)
}

// ToDot renders the transition graph in graphviz dot format with a
// stable edge order.
func (sm *StateMachine[T]) ToDot(name string) string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle];\n")

	edges := make([]string, 0)
	for key, to := range sm.eventTransitions {
		edges = append(edges, fmt.Sprintf("  \"%v\" -> \"%v\" [label=\"%s\"];\n", key.From, to, key.Event))
	}
	sort.Strings(edges)
	for _, e := range edges {
		b.WriteString(e)
	}

	b.WriteString("}\n")
	return b.String()
}
