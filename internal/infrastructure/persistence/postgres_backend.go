package persistence

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gift_autobuy/internal/domain"
	"gift_autobuy/pkg/errcodes"
)

// userConfigSchema строка таблицы user_configs.
type userConfigSchema struct {
	UserID    int64     `db:"user_id"`
	Document  []byte    `db:"document"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PostgresBackend хранит документ в jsonb. Каждая запись дополнительно
// сохраняет ревизию в user_config_revisions в той же транзакции.
type PostgresBackend struct {
	db *sqlx.DB
}

func NewPostgresBackend(db *sqlx.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// withTx выполняет функцию в транзакции.
func (b *PostgresBackend) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

func (b *PostgresBackend) Read(ctx context.Context, userID int64) ([]byte, error) {
	query := `
		SELECT user_id, document, updated_at
		FROM user_configs
		WHERE user_id = $1`

	var schema userConfigSchema
	if err := b.db.GetContext(ctx, &schema, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get configuration")
	}

	return schema.Document, nil
}

func (b *PostgresBackend) Write(ctx context.Context, userID int64, data []byte) error {
	return b.withTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		upsert := `
			INSERT INTO user_configs (user_id, document, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE
			SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`

		if _, err := tx.ExecContext(ctx, upsert, userID, string(data), now); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to upsert configuration")
		}

		revision := `
			INSERT INTO user_config_revisions (user_id, document, created_at)
			VALUES ($1, $2, $3)`

		if _, err := tx.ExecContext(ctx, revision, userID, string(data), now); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert revision")
		}

		return nil
	})
}

// Revisions количество сохранённых ревизий пользователя.
func (b *PostgresBackend) Revisions(ctx context.Context, userID int64) (int, error) {
	var count int

	query := `SELECT count(*) FROM user_config_revisions WHERE user_id = $1`
	if err := b.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to count revisions")
	}

	return count, nil
}

//go:embed migrations/0001_user_configs.sql
var userConfigsSchema string

// EnsureSchema создаёт таблицы, если их ещё нет.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, userConfigsSchema); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to create schema")
	}

	return nil
}
