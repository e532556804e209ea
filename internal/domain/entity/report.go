package entity

import (
	"github.com/samber/lo"

	"gift_autobuy/internal/domain/value"
)

type ReportStatus int

const (
	ReportPartial ReportStatus = iota + 1
	ReportCompleted
)

// ProfileReport итог профиля за цикл, в котором был прогресс или завершение.
type ProfileReport struct {
	Index  int
	Name   string
	Status ReportStatus
	Target value.Recipient
	Spent  int64
	Limit  int64
	Bought int64
	Count  int64
	Lines  []ReportLine
}

type ReportLine struct {
	ItemID   string
	Price    int64
	Quantity int
	Subtotal int64
}

// GroupPurchases сворачивает журнал покупок по id предмета в порядке
// первого появления.
func GroupPurchases(ledger []Purchase) []ReportLine {
	ids := lo.Uniq(lo.Map(ledger, func(p Purchase, _ int) string { return p.ItemID }))

	return lo.Map(ids, func(id string, _ int) ReportLine {
		items := lo.Filter(ledger, func(p Purchase, _ int) bool { return p.ItemID == id })

		return ReportLine{
			ItemID:   id,
			Price:    items[0].Price,
			Quantity: len(items),
			Subtotal: lo.SumBy(items, func(p Purchase) int64 { return p.Price }),
		}
	})
}

func NewProfileReport(index int, profile Profile, ledger []Purchase) ProfileReport {
	status := ReportPartial
	if profile.Exhausted() {
		status = ReportCompleted
	}

	return ProfileReport{
		Index:  index,
		Name:   profile.Name,
		Status: status,
		Target: profile.Target,
		Spent:  profile.Spent,
		Limit:  profile.Limit,
		Bought: profile.Bought,
		Count:  profile.Count,
		Lines:  GroupPurchases(ledger),
	}
}
