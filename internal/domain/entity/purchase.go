package entity

import (
	"time"

	"gift_autobuy/internal/domain/value"
)

// PurchaseRequest одна попытка покупки.
type PurchaseRequest struct {
	// RequestedBy владелец конфигурации, от имени которого идёт покупка.
	RequestedBy int64
	Sender      value.Sender
	ItemID      string
	Recipient   value.Recipient
	Price       int64
	AssetRef    string
}

// Purchase запись журнала успешных покупок профиля за цикл.
type Purchase struct {
	ItemID string
	Price  int64
}

type PurchaseEvent struct {
	UserID    int64     `json:"userId"`
	ProfileID string    `json:"profileId"`
	ItemID    string    `json:"itemId"`
	Price     int64     `json:"price"`
	Recipient string    `json:"recipient"`
	Sender    string    `json:"sender"`
	Success   bool      `json:"success"`
	At        time.Time `json:"at"`
}
