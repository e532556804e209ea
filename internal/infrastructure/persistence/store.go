package persistence

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"git.appkode.ru/pub/go/failure"
	"github.com/rs/xid"

	"gift_autobuy/internal/domain"
	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/pkg/errcodes"
	"gift_autobuy/pkg/logx"
)

const defaultMaxProfiles = 5

// ConfigStore загрузка с починкой, сохранение и миграция конфигураций.
// Все операции над одним пользователем выполняются под его мьютексом,
// поэтому чтение-изменение-запись через Update не теряет чужих правок.
type ConfigStore struct {
	backend     Backend
	maxProfiles int
	newID       func() string

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewConfigStore(backend Backend) *ConfigStore {
	return &ConfigStore{
		backend:     backend,
		maxProfiles: defaultMaxProfiles,
		newID:       func() string { return xid.New().String() },
		locks:       make(map[int64]*sync.Mutex),
	}
}

func (s *ConfigStore) WithMaxProfiles(n int) *ConfigStore {
	if n > 0 {
		s.maxProfiles = n
	}

	return s
}

func (s *ConfigStore) MaxProfiles() int {
	return s.maxProfiles
}

func (s *ConfigStore) lock(userID int64) func() {
	s.mu.Lock()

	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}

	s.mu.Unlock()

	l.Lock()

	return l.Unlock
}

func (s *ConfigStore) repairer(userID int64) repairer {
	return repairer{ownerID: userID, maxProfiles: s.maxProfiles, newID: s.newID}
}

// LoadValid читает конфигурацию, при отсутствии создаёт её, при порче
// пересоздаёт, а исправленную версию сразу сохраняет.
func (s *ConfigStore) LoadValid(ctx context.Context, userID int64) (entity.Configuration, error) {
	if err := checkUserID(userID); err != nil {
		return entity.Configuration{}, err
	}

	unlock := s.lock(userID)
	defer unlock()

	doc, err := s.loadLocked(ctx, userID)
	if err != nil {
		return entity.Configuration{}, err
	}

	return doc.toDomain(userID), nil
}

// Save перезаписывает конфигурацию целиком.
func (s *ConfigStore) Save(ctx context.Context, cfg entity.Configuration) error {
	if err := checkUserID(cfg.UserID); err != nil {
		return err
	}

	unlock := s.lock(cfg.UserID)
	defer unlock()

	_, err := s.saveLocked(ctx, cfg)

	return err
}

// Update выполняет чтение, изменение и запись как одну операцию.
// Если fn вернула ошибку, ничего не сохраняется.
func (s *ConfigStore) Update(
	ctx context.Context,
	userID int64,
	fn func(cfg *entity.Configuration) error,
) (entity.Configuration, error) {
	if err := checkUserID(userID); err != nil {
		return entity.Configuration{}, err
	}

	unlock := s.lock(userID)
	defer unlock()

	doc, err := s.loadLocked(ctx, userID)
	if err != nil {
		return entity.Configuration{}, err
	}

	cfg := doc.toDomain(userID)

	if err = fn(&cfg); err != nil {
		return entity.Configuration{}, err
	}

	cfg.UserID = userID

	return s.saveLocked(ctx, cfg)
}

// Migrate переводит сохранённый документ старого формата в новый.
// Возвращает true, если документ был переписан.
func (s *ConfigStore) Migrate(ctx context.Context, userID int64) (bool, error) {
	if err := checkUserID(userID); err != nil {
		return false, err
	}

	unlock := s.lock(userID)
	defer unlock()

	data, err := s.backend.Read(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}

		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to read configuration")
	}

	raw, err := decodeRaw(data)
	if err != nil {
		if _, err = s.rebuildLocked(ctx, userID, err); err != nil {
			return false, err
		}

		return true, nil
	}

	if !isLegacy(raw) {
		return false, nil
	}

	doc, _ := s.repairer(userID).repair(liftLegacy(raw))
	if err = s.writeLocked(ctx, userID, doc); err != nil {
		return false, err
	}

	logger(ctx).Info("legacy configuration migrated", slog.Int64(logx.FieldUserID, userID))

	return true, nil
}

// Export возвращает сохранённый документ в каноническом виде.
func (s *ConfigStore) Export(ctx context.Context, userID int64) ([]byte, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	unlock := s.lock(userID)
	defer unlock()

	doc, err := s.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	return encodeDocument(doc)
}

func (s *ConfigStore) loadLocked(ctx context.Context, userID int64) (configDocument, error) {
	data, err := s.backend.Read(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return configDocument{}, domain.WrapError(err, errcodes.InternalServerError, "failed to read configuration")
		}

		doc := s.defaultDocument(userID)
		if err = s.writeLocked(ctx, userID, doc); err != nil {
			return configDocument{}, err
		}

		logger(ctx).Info("configuration created", slog.Int64(logx.FieldUserID, userID))

		return doc, nil
	}

	raw, err := decodeRaw(data)
	if err != nil {
		return s.rebuildLocked(ctx, userID, err)
	}

	legacy := isLegacy(raw)
	if legacy {
		raw = liftLegacy(raw)
	}

	doc, changed := s.repairer(userID).repair(raw)
	if !changed && !legacy {
		return doc, nil
	}

	if err = s.writeLocked(ctx, userID, doc); err != nil {
		return configDocument{}, err
	}

	logger(ctx).Info(
		"configuration repaired",
		slog.Int64(logx.FieldUserID, userID),
		slog.Bool("legacy", legacy),
	)

	return doc, nil
}

// rebuildLocked заменяет нечитаемый документ конфигурацией по умолчанию.
func (s *ConfigStore) rebuildLocked(ctx context.Context, userID int64, cause error) (configDocument, error) {
	logger(ctx).Error(
		"configuration corrupted, rebuilding defaults",
		slog.Int64(logx.FieldUserID, userID),
		logx.Error(cause),
	)

	doc := s.defaultDocument(userID)
	if err := s.writeLocked(ctx, userID, doc); err != nil {
		return configDocument{}, err
	}

	return doc, nil
}

func (s *ConfigStore) saveLocked(ctx context.Context, cfg entity.Configuration) (entity.Configuration, error) {
	doc, _ := s.repairer(cfg.UserID).repair(mustRaw(newConfigDocument(cfg)))

	if err := s.writeLocked(ctx, cfg.UserID, doc); err != nil {
		return entity.Configuration{}, err
	}

	return doc.toDomain(cfg.UserID), nil
}

func (s *ConfigStore) writeLocked(ctx context.Context, userID int64, doc configDocument) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to encode configuration")
	}

	if err = s.backend.Write(ctx, userID, data); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to write configuration")
	}

	return nil
}

func (s *ConfigStore) defaultDocument(userID int64) configDocument {
	doc := newConfigDocument(entity.DefaultConfiguration(userID))
	doc.Profiles[0].ID = s.newID()

	return doc
}

func checkUserID(userID int64) error {
	if userID <= 0 {
		return failure.NewInvalidArgumentError(
			"invalid user id",
			failure.WithCode(errcodes.InvalidUserID),
			failure.WithDescription("user id must be positive"),
		)
	}

	return nil
}
