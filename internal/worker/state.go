package worker

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrInvalidTransition = errors.New("invalid state transition")

// State фаза цикла закупки.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateQuerying
	StatePurchasing
	StateEvaluating
	StateReporting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateQuerying:
		return "querying"
	case StatePurchasing:
		return "purchasing"
	case StateEvaluating:
		return "evaluating"
	case StateReporting:
		return "reporting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// transitions допустимые переходы между фазами.
//
//nolint:gochecknoglobals
var transitions = map[State][]State{
	StateIdle:       {StateIdle, StateScanning},
	StateScanning:   {StateQuerying, StateReporting},
	StateQuerying:   {StatePurchasing, StateScanning},
	StatePurchasing: {StateEvaluating},
	StateEvaluating: {StateScanning},
	StateReporting:  {StateIdle, StateScanning},
}

func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

type stateMachine struct {
	mu      sync.RWMutex
	current State
}

func (m *stateMachine) to(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !CanTransition(m.current, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, next)
	}

	m.current = next

	return nil
}

func (m *stateMachine) get() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current
}

// reset возвращает машину в Idle после прерванного цикла.
func (m *stateMachine) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = StateIdle
}
