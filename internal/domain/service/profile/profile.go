package profile

import (
	"context"
	"log/slog"

	"git.appkode.ru/pub/go/failure"

	"gift_autobuy/internal/domain"
	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
	"gift_autobuy/pkg/errcodes"
	"gift_autobuy/pkg/logx"
)

type Store interface {
	LoadValid(ctx context.Context, userID int64) (entity.Configuration, error)
	Update(ctx context.Context, userID int64, fn func(cfg *entity.Configuration) error) (entity.Configuration, error)
	MaxProfiles() int
}

// Patch частичное изменение профиля, nil поля не меняются.
// Target принимает id пользователя, @username или id канала.
type Patch struct {
	Name      *string
	MinPrice  *int64
	MaxPrice  *int64
	MinSupply *int64
	MaxSupply *int64
	Count     *int64
	Limit     *int64
	Target    *string
	Sender    *string
}

// Service операции над профилями, которые раньше выполнял мастер настройки
// в чате. Все изменения идут через Store.Update.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, userID int64) (entity.Configuration, error) {
	return s.store.LoadValid(ctx, userID)
}

// Add добавляет профиль по умолчанию с применённым patch.
func (s *Service) Add(ctx context.Context, userID int64, patch Patch) (entity.Configuration, error) {
	return s.store.Update(ctx, userID, func(cfg *entity.Configuration) error {
		if len(cfg.Profiles) >= s.store.MaxProfiles() {
			return domain.NewError(errcodes.ProfilesLimitReached, "profiles limit reached")
		}

		p := entity.DefaultProfile(userID)
		if err := patch.apply(&p, userID); err != nil {
			return err
		}

		cfg.Profiles = append(cfg.Profiles, p)

		logger(ctx).Info("profile added", slog.Int64(logx.FieldUserID, userID), slog.String(logx.FieldProfileID, p.ID))

		return nil
	})
}

func (s *Service) Update(ctx context.Context, userID int64, index int, patch Patch) (entity.Configuration, error) {
	return s.store.Update(ctx, userID, func(cfg *entity.Configuration) error {
		if err := checkIndex(*cfg, index); err != nil {
			return err
		}

		p := cfg.Profiles[index]
		if err := patch.apply(&p, userID); err != nil {
			return err
		}

		cfg.Profiles[index] = p

		return nil
	})
}

// Remove удаляет профиль. Вместо последнего профиля создаётся профиль
// по умолчанию, а закупка выключается.
func (s *Service) Remove(ctx context.Context, userID int64, index int) (entity.Configuration, error) {
	return s.store.Update(ctx, userID, func(cfg *entity.Configuration) error {
		if err := checkIndex(*cfg, index); err != nil {
			return err
		}

		cfg.Profiles = append(cfg.Profiles[:index], cfg.Profiles[index+1:]...)

		if len(cfg.Profiles) == 0 {
			cfg.Profiles = []entity.Profile{entity.DefaultProfile(userID)}
			cfg.Active = false
		}

		return nil
	})
}

func (s *Service) SetActive(ctx context.Context, userID int64, active bool) (entity.Configuration, error) {
	return s.store.Update(ctx, userID, func(cfg *entity.Configuration) error {
		cfg.Active = active

		return nil
	})
}

func (s *Service) Toggle(ctx context.Context, userID int64) (entity.Configuration, error) {
	return s.store.Update(ctx, userID, func(cfg *entity.Configuration) error {
		cfg.Active = !cfg.Active

		return nil
	})
}

// Reset обнуляет счётчики всех профилей и выключает закупку.
func (s *Service) Reset(ctx context.Context, userID int64) (entity.Configuration, error) {
	return s.store.Update(ctx, userID, func(cfg *entity.Configuration) error {
		for i := range cfg.Profiles {
			cfg.Profiles[i].ResetProgress()
		}

		cfg.Active = false

		return nil
	})
}

func checkIndex(cfg entity.Configuration, index int) error {
	if index < 0 || index >= len(cfg.Profiles) {
		return domain.NewError(errcodes.ProfileNotFound, "profile not found")
	}

	return nil
}

func (p Patch) apply(profile *entity.Profile, ownerID int64) error {
	if p.Name != nil {
		profile.Name = *p.Name
	}

	for _, f := range []struct {
		src  *int64
		dest *int64
		name string
	}{
		{p.MinPrice, &profile.MinPrice, "min price"},
		{p.MaxPrice, &profile.MaxPrice, "max price"},
		{p.MinSupply, &profile.MinSupply, "min supply"},
		{p.MaxSupply, &profile.MaxSupply, "max supply"},
		{p.Count, &profile.Count, "count"},
		{p.Limit, &profile.Limit, "limit"},
	} {
		if f.src == nil {
			continue
		}

		if *f.src <= 0 {
			return invalid(errcodes.ValidationError, f.name+" must be positive")
		}

		*f.dest = *f.src
	}

	if profile.MinPrice > profile.MaxPrice {
		return invalid(errcodes.InvalidPriceRange, "min price is greater than max price")
	}

	if profile.MinSupply > profile.MaxSupply {
		return invalid(errcodes.InvalidSupplyRange, "min supply is greater than max supply")
	}

	if p.Target != nil {
		target, err := parseTarget(*p.Target, ownerID)
		if err != nil {
			return invalid(errcodes.InvalidRecipient, err.Error())
		}

		profile.Target = target
	}

	if p.Sender != nil {
		sender, err := value.ParseSender(*p.Sender)
		if err != nil {
			return invalid(errcodes.InvalidSender, err.Error())
		}

		profile.Sender = sender
	}

	return nil
}

// parseTarget пустая строка означает владельца.
func parseTarget(s string, ownerID int64) (value.Recipient, error) {
	if s == "" {
		return value.UserRecipient(ownerID)
	}

	return value.ParseRecipient(s)
}

func invalid(code failure.ErrorCode, description string) error {
	return failure.NewInvalidArgumentError(
		"invalid profile",
		failure.WithCode(code),
		failure.WithDescription(description),
	)
}
