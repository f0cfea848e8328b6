package entities

import "fmt"

// StateMachine is the transition table of one document type. A status with
// no outgoing transitions is terminal.
type StateMachine[S ~string] struct {
	kind        DocumentKind
	initial     []S
	transitions map[S][]S
}

// NewStateMachine builds a state machine. Every status must appear as a key
// of transitions, terminal ones with a nil slice.
func NewStateMachine[S ~string](kind DocumentKind, initial []S, transitions map[S][]S) *StateMachine[S] {
	for _, s := range initial {
		if _, ok := transitions[s]; !ok {
			panic(fmt.Sprintf("%s: initial status %s missing from transition table", kind, s))
		}
	}
	for from, targets := range transitions {
		for _, to := range targets {
			if _, ok := transitions[to]; !ok {
				panic(fmt.Sprintf("%s: transition %s -> %s targets an unknown status", kind, from, to))
			}
		}
	}
	return &StateMachine[S]{
		kind:        kind,
		initial:     initial,
		transitions: transitions,
	}
}

// Initial returns the statuses a document may be created in
func (m *StateMachine[S]) Initial() []S {
	return append([]S(nil), m.initial...)
}

// Known reports whether s belongs to this machine
func (m *StateMachine[S]) Known(s S) bool {
	_, ok := m.transitions[s]
	return ok
}

// AllowedTransitions returns the statuses reachable in one step from current
func (m *StateMachine[S]) AllowedTransitions(current S) []S {
	return append([]S(nil), m.transitions[current]...)
}

// IsTerminal reports whether no transition leaves s
func (m *StateMachine[S]) IsTerminal(s S) bool {
	return m.Known(s) && len(m.transitions[s]) == 0
}

// CanTransition reports whether from -> to is in the table
func (m *StateMachine[S]) CanTransition(from, to S) bool {
	for _, t := range m.transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CheckInitial validates the status a new document starts in
func (m *StateMachine[S]) CheckInitial(id string, s S) error {
	for _, i := range m.initial {
		if i == s {
			return nil
		}
	}
	return &InvalidTransitionError{
		Kind:   m.kind,
		ID:     id,
		From:   string(s),
		Reason: "documents cannot be created in this status",
	}
}

// Check validates from -> to
func (m *StateMachine[S]) Check(id string, from, to S) error {
	if m.CanTransition(from, to) {
		return nil
	}
	return &InvalidTransitionError{
		Kind: m.kind,
		ID:   id,
		From: string(from),
		To:   string(to),
	}
}

// CheckMutable refuses item or amount changes once s is terminal
func (m *StateMachine[S]) CheckMutable(id string, s S) error {
	if !m.IsTerminal(s) {
		return nil
	}
	return &InvalidTransitionError{
		Kind:   m.kind,
		ID:     id,
		From:   string(s),
		Reason: "document is closed for changes",
	}
}
