package persistence

import (
	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
)

const targetTypeChannel = "channel"

// configDocument сохраняемая форма конфигурации. Порядок полей задаёт
// порядок ключей в JSON, поэтому кодирование детерминировано.
type configDocument struct {
	Balance           int64             `json:"BALANCE" validate:"gte=0"`
	Active            bool              `json:"ACTIVE"`
	LastMenuMessageID *int64            `json:"LAST_MENU_MESSAGE_ID"`
	Profiles          []profileDocument `json:"PROFILES" validate:"-"`
	Userbot           userbotDocument   `json:"USERBOT" validate:"-"`
}

type profileDocument struct {
	ID           string  `json:"ID"`
	Name         *string `json:"NAME" validate:"omitempty,max=64"`
	MinPrice     int64   `json:"MIN_PRICE" validate:"gt=0"`
	MaxPrice     int64   `json:"MAX_PRICE" validate:"gt=0"`
	MinSupply    int64   `json:"MIN_SUPPLY" validate:"gt=0"`
	MaxSupply    int64   `json:"MAX_SUPPLY" validate:"gt=0"`
	Limit        int64   `json:"LIMIT" validate:"gt=0"`
	Count        int64   `json:"COUNT" validate:"gt=0"`
	TargetUserID *int64  `json:"TARGET_USER_ID" validate:"omitempty,gt=0"`
	TargetChatID *string `json:"TARGET_CHAT_ID" validate:"omitempty,max=128"`
	TargetType   *string `json:"TARGET_TYPE" validate:"omitempty,oneof=channel"`
	Sender       string  `json:"SENDER" validate:"oneof=bot userbot"`
	Bought       int64   `json:"BOUGHT" validate:"gte=0"`
	Spent        int64   `json:"SPENT" validate:"gte=0"`
	Done         bool    `json:"DONE"`
}

type userbotDocument struct {
	Enabled bool  `json:"ENABLED"`
	Balance int64 `json:"BALANCE" validate:"gte=0"`
}

func newConfigDocument(cfg entity.Configuration) configDocument {
	profiles := make([]profileDocument, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		profiles = append(profiles, newProfileDocument(p))
	}

	return configDocument{
		Balance:           cfg.Balance,
		Active:            cfg.Active,
		LastMenuMessageID: cfg.LastMenuMessageID,
		Profiles:          profiles,
		Userbot: userbotDocument{
			Enabled: cfg.Userbot.Enabled,
			Balance: cfg.Userbot.Balance,
		},
	}
}

func newProfileDocument(p entity.Profile) profileDocument {
	doc := profileDocument{
		ID:        p.ID,
		MinPrice:  p.MinPrice,
		MaxPrice:  p.MaxPrice,
		MinSupply: p.MinSupply,
		MaxSupply: p.MaxSupply,
		Limit:     p.Limit,
		Count:     p.Count,
		Sender:    p.Sender.String(),
		Bought:    p.Bought,
		Spent:     p.Spent,
		Done:      p.Done,
	}

	if p.Name != "" {
		doc.Name = &p.Name
	}

	if id, ok := p.Target.UserID(); ok {
		doc.TargetUserID = &id
	}

	if channel, ok := p.Target.Channel(); ok {
		targetType := targetTypeChannel
		doc.TargetChatID = &channel
		doc.TargetType = &targetType
	}

	return doc
}

func (d configDocument) toDomain(userID int64) entity.Configuration {
	profiles := make([]entity.Profile, 0, len(d.Profiles))
	for _, p := range d.Profiles {
		profiles = append(profiles, p.toDomain(userID))
	}

	return entity.Configuration{
		UserID:            userID,
		Balance:           d.Balance,
		Active:            d.Active,
		LastMenuMessageID: d.LastMenuMessageID,
		Profiles:          profiles,
		Userbot: entity.UserbotState{
			Enabled: d.Userbot.Enabled,
			Balance: d.Userbot.Balance,
		},
	}
}

func (d profileDocument) toDomain(ownerID int64) entity.Profile {
	p := entity.Profile{
		ID:        d.ID,
		MinPrice:  d.MinPrice,
		MaxPrice:  d.MaxPrice,
		MinSupply: d.MinSupply,
		MaxSupply: d.MaxSupply,
		Count:     d.Count,
		Limit:     d.Limit,
		Target:    d.target(ownerID),
		Sender:    value.Sender(d.Sender),
		Bought:    d.Bought,
		Spent:     d.Spent,
		Done:      d.Done,
	}

	if d.Name != nil {
		p.Name = *d.Name
	}

	return p
}

// target канал приоритетнее пользователя, без получателя подарок уходит владельцу.
func (d profileDocument) target(ownerID int64) value.Recipient {
	if d.TargetChatID != nil {
		if r, err := value.ChannelRecipient(*d.TargetChatID); err == nil {
			return r
		}
	}

	if d.TargetUserID != nil {
		if r, err := value.UserRecipient(*d.TargetUserID); err == nil {
			return r
		}
	}

	r, _ := value.UserRecipient(ownerID) //nolint:errcheck // владелец проверен на входе в хранилище

	return r
}
