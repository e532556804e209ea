package worker

import "gift_autobuy/internal/domain/entity"

// ProfileOutcome итог хода одного профиля.
type ProfileOutcome int

const (
	ProfileNoProgress ProfileOutcome = iota
	ProfilePartial
	ProfileCompleted
)

// Evaluate сравнивает профиль до и после хода.
func Evaluate(before, after entity.Profile) ProfileOutcome {
	switch {
	case after.Exhausted():
		return ProfileCompleted
	case after.Progressed(before):
		return ProfilePartial
	default:
		return ProfileNoProgress
	}
}

// CycleOutcome итог цикла целиком.
type CycleOutcome int

const (
	OutcomeIdle CycleOutcome = iota
	// OutcomeNoInventory ни для одного профиля не нашлось подходящих подарков.
	OutcomeNoInventory
	// OutcomeNoProgress подарки были, но покупать было нечего или нечем, и ошибок не было.
	OutcomeNoProgress
	OutcomeProgress
	OutcomeTotalFailure
	OutcomeAllDone
)

func (o CycleOutcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeNoInventory:
		return "no_inventory"
	case OutcomeNoProgress:
		return "no_progress"
	case OutcomeProgress:
		return "progress"
	case OutcomeTotalFailure:
		return "total_failure"
	case OutcomeAllDone:
		return "all_done"
	default:
		return "unknown"
	}
}

// CycleSummary что произошло за проход по профилям.
type CycleSummary struct {
	// InventoryFound хотя бы один профиль получил непустую выдачу.
	InventoryFound bool
	// Failed была хотя бы одна неудачная попытка покупки.
	Failed  bool
	Reports []entity.ProfileReport
}

// Decision действия по итогам цикла.
type Decision struct {
	Outcome            CycleOutcome
	Deactivate         bool
	SendReport         bool
	NotifyTotalFailure bool
	NotifyAllDone      bool
}

// Decide решение по итогам цикла. cfg это конфигурация, перечитанная после
// прохода по профилям. Решение может только выключить закупку, но никогда
// не включает её обратно.
func Decide(summary CycleSummary, cfg entity.Configuration) Decision {
	var d Decision

	progressed := len(summary.Reports) > 0
	active := cfg.Active
	allDone := cfg.AllDone()

	switch {
	case progressed:
		d.Outcome = OutcomeProgress
	case summary.Failed:
		d.Outcome = OutcomeTotalFailure
	case summary.InventoryFound:
		d.Outcome = OutcomeNoProgress
	default:
		d.Outcome = OutcomeNoInventory
	}

	if d.Outcome == OutcomeTotalFailure && active {
		d.NotifyTotalFailure = true
		active = false
	}

	if progressed {
		d.SendReport = true
		active = active && !allDone
	}

	if allDone && active {
		d.Outcome = OutcomeAllDone
		d.NotifyAllDone = true
		active = false
	}

	d.Deactivate = cfg.Active && !active

	return d
}
