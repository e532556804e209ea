package entity

import (
	"github.com/rs/xid"

	"gift_autobuy/internal/domain/value"
)

// Значения профиля по умолчанию.
const (
	DefaultMinPrice  int64 = 5000
	DefaultMaxPrice  int64 = 10000
	DefaultMinSupply int64 = 1000
	DefaultMaxSupply int64 = 10000
	DefaultLimit     int64 = 1_000_000
	DefaultCount     int64 = 5
)

// Profile одна кампания закупки со своими фильтрами, лимитами и получателем.
type Profile struct {
	ID        string
	Name      string
	MinPrice  int64
	MaxPrice  int64
	MinSupply int64
	MaxSupply int64
	Count     int64
	Limit     int64
	Target    value.Recipient
	Sender    value.Sender
	Bought    int64
	Spent     int64
	Done      bool
}

func DefaultProfile(ownerID int64) Profile {
	target, _ := value.UserRecipient(ownerID) //nolint:errcheck // невалидный владелец даёт пустого получателя

	return Profile{
		ID:        xid.New().String(),
		MinPrice:  DefaultMinPrice,
		MaxPrice:  DefaultMaxPrice,
		MinSupply: DefaultMinSupply,
		MaxSupply: DefaultMaxSupply,
		Count:     DefaultCount,
		Limit:     DefaultLimit,
		Target:    target,
		Sender:    value.SenderBot,
	}
}

func (p Profile) Filter() ItemFilter {
	return ItemFilter{
		MinPrice:  p.MinPrice,
		MaxPrice:  p.MaxPrice,
		MinSupply: p.MinSupply,
		MaxSupply: p.MaxSupply,
	}
}

// CanAfford сообщает, можно ли купить ещё один предмет по цене price,
// не выходя за лимит количества и бюджета.
func (p Profile) CanAfford(price int64) bool {
	return p.Bought < p.Count && p.Spent+price <= p.Limit
}

// Exhausted достигнут лимит по количеству или по сумме.
func (p Profile) Exhausted() bool {
	return p.Bought >= p.Count || p.Spent >= p.Limit
}

func (p Profile) Progressed(since Profile) bool {
	return p.Bought > since.Bought || p.Spent > since.Spent
}

func (p *Profile) RecordPurchase(price int64) {
	p.Bought++
	p.Spent += price
}

func (p *Profile) ResetProgress() {
	p.Bought = 0
	p.Spent = 0
	p.Done = false
}
