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
	"errors"
	"strings"
	"testing"
)

// 定义测试用状态
type OrderStatus string

const (
	OrderCreated   OrderStatus = "CREATED"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCanceled  OrderStatus = "CANCELED"
)

func newOrderMachine() *StateMachine[OrderStatus] {
	sm := NewWithState(OrderCreated)
	sm.AddEventTransition(OrderCreated, "pay", OrderPaid).
		AddEventTransition(OrderCreated, "cancel", OrderCanceled).
		AddEventTransition(OrderPaid, "ship", OrderShipped).
		AddEventTransition(OrderPaid, "cancel", OrderCanceled).
		AddEventTransition(OrderShipped, "deliver", OrderDelivered)
	return sm
}

func TestStateMachine_Transition(t *testing.T) {
	sm := newOrderMachine()

	if sm.Current() != OrderCreated {
		t.Errorf("expected current state to be %v, got %v", OrderCreated, sm.Current())
	}
	if err := sm.Transition(OrderCreated, OrderPaid, "pay"); err != nil {
		t.Errorf("expected transition to succeed, got error: %v", err)
	}
	if sm.Current() != OrderPaid {
		t.Errorf("expected current state to be %v, got %v", OrderPaid, sm.Current())
	}

	err := sm.Transition(OrderPaid, OrderDelivered, "")
	var te *TransitionError[OrderStatus]
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransitionError, got %v", err)
	}
	if te.From != OrderPaid || te.To != OrderDelivered {
		t.Errorf("unexpected transition error payload: %+v", te)
	}
	if sm.Current() != OrderPaid {
		t.Errorf("failed transition must not change state, got %v", sm.Current())
	}
}

func TestStateMachine_CanTransition(t *testing.T) {
	sm := newOrderMachine()

	if !sm.CanTransition(OrderCreated, OrderPaid) {
		t.Error("expected to be able to transit to PAID")
	}
	if sm.CanTransition(OrderCreated, OrderShipped) {
		t.Error("expected NOT to be able to transit to SHIPPED")
	}
}

func TestStateMachine_OnTransition(t *testing.T) {
	sm := newOrderMachine()
	errNoStock := errors.New("out of stock")

	var seen []string
	sm.OnTransition(func(from, to OrderStatus, event Event) error {
		seen = append(seen, string(from)+">"+string(to)+":"+string(event))
		if to == OrderShipped {
			return errNoStock
		}
		return nil
	})

	if err := sm.TriggerEvent("pay"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sm.TriggerEvent("ship"); !errors.Is(err, errNoStock) {
		t.Errorf("expected hook error, got %v", err)
	}
	if sm.Current() != OrderPaid {
		t.Errorf("vetoed transition must not change state, got %v", sm.Current())
	}

	want := []string{"CREATED>PAID:pay", "PAID>SHIPPED:ship"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Errorf("hook calls = %v, want %v", seen, want)
	}
}

func TestStateMachine_TriggerEvent(t *testing.T) {
	sm := newOrderMachine()

	err := sm.TriggerEvent("ship")
	var te *TransitionError[OrderStatus]
	if !errors.As(err, &te) || te.Event != "ship" {
		t.Errorf("expected unknown event to fail with *TransitionError, got %v", err)
	}
	if err := sm.TriggerEvent("pay"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if sm.Current() != OrderPaid {
		t.Errorf("expected PAID, got %v", sm.Current())
	}
}

func TestStateMachine_GetValidNextStates(t *testing.T) {
	sm := newOrderMachine()
	next := sm.GetValidNextStates(OrderCreated)
	if len(next) != 2 || next[0] != OrderPaid || next[1] != OrderCanceled {
		t.Errorf("unexpected next states %v", next)
	}
	if len(sm.GetValidNextStates(OrderDelivered)) != 0 {
		t.Error("terminal state should have no next states")
	}
}

func TestStateMachine_ToDot(t *testing.T) {
	dot := newOrderMachine().ToDot("order")
	if !strings.HasPrefix(dot, "digraph order {") {
		t.Errorf("unexpected dot header: %s", dot)
	}
	if !strings.Contains(dot, `"CREATED" -> "PAID" [label="pay"];`) {
		t.Errorf("dot output missing labelled edge: %s", dot)
	}
}
