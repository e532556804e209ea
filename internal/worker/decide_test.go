package worker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gift_autobuy/internal/domain/entity"
)

func profileState(bought, spent int64, done bool) entity.Profile {
	return entity.Profile{Count: 3, Limit: 300, Bought: bought, Spent: spent, Done: done}
}

func TestEvaluate(t *testing.T) {
	testCases := []struct {
		name   string
		before entity.Profile
		after  entity.Profile
		want   ProfileOutcome
	}{
		{name: "nothing bought", before: profileState(0, 0, false), after: profileState(0, 0, false), want: ProfileNoProgress},
		{name: "some bought", before: profileState(0, 0, false), after: profileState(1, 100, false), want: ProfilePartial},
		{name: "count reached", before: profileState(1, 50, false), after: profileState(3, 150, false), want: ProfileCompleted},
		{name: "limit reached", before: profileState(0, 0, false), after: profileState(1, 300, false), want: ProfileCompleted},
		{name: "exhausted without purchases", before: profileState(3, 90, false), after: profileState(3, 90, false), want: ProfileCompleted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Evaluate(tc.before, tc.after))
		})
	}
}

func TestDecide(t *testing.T) {
	report := entity.ProfileReport{Index: 0}

	testCases := []struct {
		name     string
		summary  CycleSummary
		active   bool
		profiles []entity.Profile
		want     Decision
	}{
		{
			name:     "no inventory",
			active:   true,
			profiles: []entity.Profile{profileState(0, 0, false)},
			want:     Decision{Outcome: OutcomeNoInventory},
		},
		{
			name:     "inventory without progress",
			summary:  CycleSummary{InventoryFound: true},
			active:   true,
			profiles: []entity.Profile{profileState(0, 0, false)},
			want:     Decision{Outcome: OutcomeNoProgress},
		},
		{
			name:     "total failure",
			summary:  CycleSummary{InventoryFound: true, Failed: true},
			active:   true,
			profiles: []entity.Profile{profileState(0, 0, false)},
			want:     Decision{Outcome: OutcomeTotalFailure, Deactivate: true, NotifyTotalFailure: true},
		},
		{
			name:     "total failure while inactive",
			summary:  CycleSummary{InventoryFound: true, Failed: true},
			active:   false,
			profiles: []entity.Profile{profileState(0, 0, false)},
			want:     Decision{Outcome: OutcomeTotalFailure},
		},
		{
			name:     "failure with progress elsewhere",
			summary:  CycleSummary{InventoryFound: true, Failed: true, Reports: []entity.ProfileReport{report}},
			active:   true,
			profiles: []entity.Profile{profileState(1, 100, false), profileState(0, 0, false)},
			want:     Decision{Outcome: OutcomeProgress, SendReport: true},
		},
		{
			name:     "progress completes everything",
			summary:  CycleSummary{InventoryFound: true, Reports: []entity.ProfileReport{report}},
			active:   true,
			profiles: []entity.Profile{profileState(3, 300, true)},
			want:     Decision{Outcome: OutcomeProgress, Deactivate: true, SendReport: true},
		},
		{
			name:     "all done before cycle",
			active:   true,
			profiles: []entity.Profile{profileState(3, 300, true), profileState(1, 300, true)},
			want:     Decision{Outcome: OutcomeAllDone, Deactivate: true, NotifyAllDone: true},
		},
		{
			name:     "deactivated by owner mid cycle",
			summary:  CycleSummary{InventoryFound: true, Reports: []entity.ProfileReport{report}},
			active:   false,
			profiles: []entity.Profile{profileState(3, 300, true)},
			want:     Decision{Outcome: OutcomeProgress, SendReport: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := entity.Configuration{Active: tc.active, Profiles: tc.profiles}

			require.Equal(t, tc.want, Decide(tc.summary, cfg))
		})
	}
}
