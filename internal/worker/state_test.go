package worker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		from State
		to   State
		want bool
	}{
		{from: StateIdle, to: StateIdle, want: true},
		{from: StateIdle, to: StateScanning, want: true},
		{from: StateIdle, to: StatePurchasing, want: false},
		{from: StateScanning, to: StateQuerying, want: true},
		{from: StateScanning, to: StateReporting, want: true},
		{from: StateScanning, to: StateScanning, want: false},
		{from: StateQuerying, to: StatePurchasing, want: true},
		{from: StateQuerying, to: StateScanning, want: true},
		{from: StateQuerying, to: StateReporting, want: false},
		{from: StatePurchasing, to: StateEvaluating, want: true},
		{from: StatePurchasing, to: StateScanning, want: false},
		{from: StateEvaluating, to: StateScanning, want: true},
		{from: StateEvaluating, to: StateIdle, want: false},
		{from: StateReporting, to: StateIdle, want: true},
		{from: StateReporting, to: StateScanning, want: true},
		{from: StateReporting, to: StateQuerying, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.from.String()+"->"+tc.to.String(), func(t *testing.T) {
			require.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestStateMachine(t *testing.T) {
	rq := require.New(t)

	var m stateMachine

	rq.Equal(StateIdle, m.get())
	rq.NoError(m.to(StateScanning))
	rq.NoError(m.to(StateQuerying))
	rq.ErrorIs(m.to(StateReporting), ErrInvalidTransition)
	rq.Equal(StateQuerying, m.get())

	m.reset()
	rq.Equal(StateIdle, m.get())
}
