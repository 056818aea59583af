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
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidTransition is returned when no edge exists between two states.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionHook runs after the edge has been validated and before the state changes.
type TransitionHook[T comparable] func(from, to T) error

// StateHook runs after a state has been entered.
type StateHook[T comparable] func(state T) error

// TransitionValidator may veto an otherwise allowed edge.
type TransitionValidator[T comparable] func(from, to T) error

// StateMachine is a small generic FSM. It is safe for concurrent use.
//
// A machine holds the edge table and, optionally, a current state. Services that
// persist state elsewhere only use Transition(from, to) to check an edge and run
// the hooks; they never rely on Current.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	current T
	edges   map[T][]T

	validators   []TransitionValidator[T]
	onTransition []TransitionHook[T]
	onEnter      map[T][]StateHook[T]
}

// New creates an empty StateMachine.
func New[T comparable]() *StateMachine[T] {
	return &StateMachine[T]{
		edges:   make(map[T][]T),
		onEnter: make(map[T][]StateHook[T]),
	}
}

// NewWithState creates a StateMachine positioned at initial.
func NewWithState[T comparable](initial T) *StateMachine[T] {
	sm := New[T]()
	sm.current = initial
	return sm
}

// Allow registers the edges from -> to...
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, target := range to {
		if !slices.Contains(sm.edges[from], target) {
			sm.edges[from] = append(sm.edges[from], target)
		}
	}
	return sm
}

// CanTransition reports whether from -> to is a registered edge.
func (sm *StateMachine[T]) CanTransition(from, to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.edges[from], to)
}

// NextStates returns a copy of the states reachable from from.
func (sm *StateMachine[T]) NextStates(from T) []T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.edges[from])
}

// Current returns the tracked state.
func (sm *StateMachine[T]) Current() T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// SetCurrent moves the tracked state without running hooks.
func (sm *StateMachine[T]) SetCurrent(state T) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.current = state
}

// AddValidator registers a validator consulted on every transition.
func (sm *StateMachine[T]) AddValidator(v TransitionValidator[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.validators = append(sm.validators, v)
	return sm
}

// OnTransition registers a hook called on every transition.
func (sm *StateMachine[T]) OnTransition(h TransitionHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onTransition = append(sm.onTransition, h)
	return sm
}

// OnEnter registers a hook called after entering state.
func (sm *StateMachine[T]) OnEnter(state T, h StateHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onEnter[state] = append(sm.onEnter[state], h)
	return sm
}

// Transition validates from -> to, runs validators and hooks, then records to
// as the current state.
func (sm *StateMachine[T]) Transition(from, to T) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !slices.Contains(sm.edges[from], to) {
		return fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, from, to)
	}
	for _, v := range sm.validators {
		if err := v(from, to); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	for _, h := range sm.onTransition {
		if err := h(from, to); err != nil {
			return fmt.Errorf("transition hook failed: %w", err)
		}
	}

	sm.current = to

	for _, h := range sm.onEnter[to] {
		if err := h(to); err != nil {
			return fmt.Errorf("enter hook failed for state %v: %w", to, err)
		}
	}
	return nil
}

// TransitionTo transitions from the tracked state.
func (sm *StateMachine[T]) TransitionTo(to T) error {
	return sm.Transition(sm.Current(), to)
}
