package persistence

import (
	"context"
	"errors"
	"strconv"
)

// ErrNotFound у пользователя ещё нет сохранённой конфигурации.
var ErrNotFound = errors.New("configuration not found")

// Backend хранилище документов конфигурации. Документ всегда пишется целиком.
type Backend interface {
	Read(ctx context.Context, userID int64) ([]byte, error)
	Write(ctx context.Context, userID int64, data []byte) error
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
