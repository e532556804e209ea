package balance

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/pkg/logx"
)

const defaultTTL = 5 * time.Second

type StarBalancer interface {
	StarBalance(ctx context.Context) (int64, error)
}

type ConfigUpdater interface {
	Update(ctx context.Context, userID int64, fn func(cfg *entity.Configuration) error) (entity.Configuration, error)
}

type readiness interface {
	Ready() bool
}

// Service обновляет сохранённые балансы бота и юзербота. Значения
// кэшируются на короткое время, чтобы не дёргать API каждый цикл.
type Service struct {
	store   ConfigUpdater
	bot     StarBalancer
	userbot StarBalancer
	cache   *cache.Cache
}

func NewService(store ConfigUpdater, bot StarBalancer) *Service {
	return &Service{
		store: store,
		bot:   bot,
		cache: cache.New(defaultTTL, 2*defaultTTL),
	}
}

func (s *Service) WithUserbot(userbot StarBalancer) *Service {
	s.userbot = userbot

	return s
}

func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}

	return s
}

// Refresh возвращает баланс бота, обращаясь к API не чаще раза в TTL.
func (s *Service) Refresh(ctx context.Context, userID int64) (int64, error) {
	if cached, ok := s.cache.Get(cacheKey(userID)); ok {
		return cached.(int64), nil //nolint:forcetypeassert
	}

	return s.ForceRefresh(ctx, userID)
}

// ForceRefresh запрашивает балансы и сохраняет их в конфигурацию
// пользователя. Недоступный юзербот не считается ошибкой.
func (s *Service) ForceRefresh(ctx context.Context, userID int64) (int64, error) {
	botBalance, err := s.bot.StarBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("bot.StarBalance: %w", err)
	}

	userbotBalance, userbotOK := s.userbotBalance(ctx)

	_, err = s.store.Update(ctx, userID, func(cfg *entity.Configuration) error {
		cfg.Balance = botBalance

		if userbotOK {
			cfg.Userbot.Balance = userbotBalance
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store.Update: %w", err)
	}

	s.cache.Set(cacheKey(userID), botBalance, cache.DefaultExpiration)

	logger(ctx).Debug(
		"balance refreshed",
		slog.Int64(logx.FieldUserID, userID),
		slog.Int64(logx.FieldBalance, botBalance),
	)

	return botBalance, nil
}

func (s *Service) userbotBalance(ctx context.Context) (int64, bool) {
	if s.userbot == nil {
		return 0, false
	}

	if rd, ok := s.userbot.(readiness); ok && !rd.Ready() {
		return 0, false
	}

	amount, err := s.userbot.StarBalance(ctx)
	if err != nil {
		logger(ctx).Warn("userbot balance refresh failed", logx.Error(err))

		return 0, false
	}

	return amount, true
}

func cacheKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
