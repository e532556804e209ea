// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import "time"

// Config Конфигурация пользователя
type Config struct {
	UserID            int64     `json:"userId"`
	Balance           int64     `json:"balance"`
	Active            bool      `json:"active"`
	LastMenuMessageID *int64    `json:"lastMenuMessageId"`
	Profiles          []Profile `json:"profiles"`
	Userbot           Userbot   `json:"userbot"`

	// Summary Сводка в HTML разметке, как её видит владелец в чате
	Summary string `json:"summary"`
}

// Profile Профиль закупки
type Profile struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	MinPrice  int64  `json:"minPrice"`
	MaxPrice  int64  `json:"maxPrice"`
	MinSupply int64  `json:"minSupply"`
	MaxSupply int64  `json:"maxSupply"`
	Count     int64  `json:"count"`
	Limit     int64  `json:"limit"`

	// Target Получатель: id пользователя, @username или id канала
	Target     string `json:"target"`
	TargetKind string `json:"targetKind"`
	Sender     string `json:"sender"`
	Bought     int64  `json:"bought"`
	Spent      int64  `json:"spent"`
	Done       bool   `json:"done"`
}

type Userbot struct {
	Enabled bool  `json:"enabled"`
	Balance int64 `json:"balance"`
}

// ProfilePatch Частичное изменение профиля, отсутствующие поля не меняются
type ProfilePatch struct {
	Name      *string `json:"name" validate:"omitempty,max=64"`
	MinPrice  *int64  `json:"minPrice" validate:"omitempty,gt=0"`
	MaxPrice  *int64  `json:"maxPrice" validate:"omitempty,gt=0"`
	MinSupply *int64  `json:"minSupply" validate:"omitempty,gt=0"`
	MaxSupply *int64  `json:"maxSupply" validate:"omitempty,gt=0"`
	Count     *int64  `json:"count" validate:"omitempty,gt=0"`
	Limit     *int64  `json:"limit" validate:"omitempty,gt=0"`

	// Target Пустая строка означает владельца
	Target *string `json:"target" validate:"omitempty,max=128"`
	Sender *string `json:"sender" validate:"omitempty,oneof=bot userbot"`
}

type SetActive struct {
	Active *bool `json:"active" validate:"required"`
}

type Balance struct {
	Balance int64 `json:"balance"`
}

// WorkerStatus Состояние воркера закупки
type WorkerStatus struct {
	UserID      int64      `json:"userId"`
	State       string     `json:"state"`
	Running     bool       `json:"running"`
	LastOutcome string     `json:"lastOutcome"`
	LastCycleAt *time.Time `json:"lastCycleAt"`
	Cycles      int64      `json:"cycles"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string
