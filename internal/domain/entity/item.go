package entity

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// Item позиция витрины. Не сохраняется, запрашивается заново каждый раз.
type Item struct {
	ID        string
	Price     int64
	Supply    int64
	Remaining int64
	// AssetRef непрозрачная ссылка на ассет (file id стикера и т.п.).
	AssetRef string
}

// ItemFilter диапазоны цены и тиража, границы включительно.
type ItemFilter struct {
	MinPrice  int64
	MaxPrice  int64
	MinSupply int64
	MaxSupply int64
}

func (f ItemFilter) Match(item Item) bool {
	return item.Price >= f.MinPrice && item.Price <= f.MaxPrice &&
		item.Supply >= f.MinSupply && item.Supply <= f.MaxSupply
}

// Apply отбирает подходящие позиции и сортирует их по убыванию цены.
func (f ItemFilter) Apply(items []Item) []Item {
	matched := lo.Filter(items, func(item Item, _ int) bool { return f.Match(item) })

	slices.SortStableFunc(matched, func(a, b Item) int {
		return cmp.Compare(b.Price, a.Price)
	})

	return matched
}
