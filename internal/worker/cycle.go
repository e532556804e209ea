package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/service/report"
	"gift_autobuy/internal/domain/value"
	"gift_autobuy/pkg/logx"
)

// ErrProfileGone профиль удалили, пока по нему шли покупки.
var ErrProfileGone = errors.New("profile removed during purchase")

// profileTurn результат хода одного профиля.
type profileTurn struct {
	before entity.Profile
	after  entity.Profile
	ledger []entity.Purchase
	failed bool
}

// RunCycle один проход по всем профилям с последующей отчётностью.
func (w *PurchaseWorker) RunCycle(ctx context.Context) (CycleOutcome, error) {
	cfg, err := w.store.LoadValid(ctx, w.userID)
	if err != nil {
		return OutcomeIdle, fmt.Errorf("store.LoadValid: %w", err)
	}

	if !cfg.Active {
		if err = w.transition(StateIdle); err != nil {
			return OutcomeIdle, err
		}

		w.recordCycle(OutcomeIdle)

		return OutcomeIdle, nil
	}

	if err = w.transition(StateScanning); err != nil {
		return OutcomeIdle, err
	}

	ctx = contextWithAttrs(ctx, slog.String(logx.FieldCycleID, xid.New().String()))

	w.refreshBalance(ctx, false)

	summary, err := w.scan(ctx, cfg)
	if err != nil {
		return OutcomeIdle, err
	}

	if err = w.transition(StateReporting); err != nil {
		return OutcomeIdle, err
	}

	outcome, err := w.report(ctx, summary)
	if err != nil {
		return OutcomeIdle, err
	}

	w.recordCycle(outcome)

	return outcome, nil
}

func (w *PurchaseWorker) scan(ctx context.Context, cfg entity.Configuration) (CycleSummary, error) {
	var summary CycleSummary

	for _, p := range cfg.Profiles {
		if p.Done {
			continue
		}

		profileCtx := contextWithAttrs(ctx, slog.String(logx.FieldProfileID, p.ID))

		if !w.senderReady(cfg, p.Sender) {
			logger(profileCtx).Debug("sender unavailable, profile skipped", slog.String(logx.FieldSender, p.Sender.String()))

			continue
		}

		if err := w.transition(StateQuerying); err != nil {
			return summary, err
		}

		items, err := w.inventory.Query(profileCtx, p.Filter())
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}

			// витрина недоступна: для профиля этот цикл пустой
			logger(profileCtx).Warn("inventory query failed", logx.Error(err))
		}

		if len(items) == 0 {
			if err = w.transition(StateScanning); err != nil {
				return summary, err
			}

			continue
		}

		summary.InventoryFound = true

		if err = w.transition(StatePurchasing); err != nil {
			return summary, err
		}

		turn, err := w.purchaseProfile(profileCtx, p, items)
		if errors.Is(err, ErrProfileGone) {
			logger(profileCtx).Warn("profile removed during purchase")

			summary.Failed = summary.Failed || turn.failed
			err = nil
		}

		if err != nil {
			return summary, err
		}

		summary.Failed = summary.Failed || turn.failed

		if err = w.transition(StateEvaluating); err != nil {
			return summary, err
		}

		entry, ok, err := w.evaluate(profileCtx, turn)
		if err != nil {
			return summary, err
		}

		if ok {
			summary.Reports = append(summary.Reports, entry)
			w.refreshBalance(profileCtx, true)
		}

		if err = w.transition(StateScanning); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (w *PurchaseWorker) senderReady(cfg entity.Configuration, sender value.Sender) bool {
	if sender == value.SenderUserbot && !cfg.Userbot.Enabled {
		return false
	}

	return w.purchaser.Available(sender)
}

// purchaseProfile покупает подарки по порядку выдачи, повторяя один и тот же
// подарок, пока хватает лимита количества и бюджета. Неудачная покупка
// переводит к следующему подарку.
func (w *PurchaseWorker) purchaseProfile(ctx context.Context, p entity.Profile, items []entity.Item) (profileTurn, error) {
	turn := profileTurn{before: p, after: p}

	for _, item := range items {
		for turn.after.CanAfford(item.Price) {
			req := entity.PurchaseRequest{
				RequestedBy: w.userID,
				Sender:      turn.after.Sender,
				ItemID:      item.ID,
				Recipient:   turn.after.Target,
				Price:       item.Price,
				AssetRef:    item.AssetRef,
			}

			if err := w.purchaser.Purchase(ctx, p.ID, req); err != nil {
				if ctx.Err() != nil {
					return turn, ctx.Err()
				}

				w.metrics.observePurchase(req.Sender.String(), item.Price, false)
				logger(ctx).Warn(
					"purchase failed, trying next item",
					slog.String(logx.FieldItemID, item.ID),
					slog.Int64(logx.FieldPrice, item.Price),
					logx.Error(err),
				)

				turn.failed = true

				break
			}

			w.metrics.observePurchase(req.Sender.String(), item.Price, true)

			updated, err := w.recordPurchase(ctx, p.ID, item.Price)
			if err != nil {
				return turn, err
			}

			turn.after = updated
			turn.ledger = append(turn.ledger, entity.Purchase{ItemID: item.ID, Price: item.Price})

			logger(ctx).Info(
				"gift purchased",
				slog.String(logx.FieldItemID, item.ID),
				slog.Int64(logx.FieldPrice, item.Price),
				slog.Int64("bought", updated.Bought),
				slog.Int64("spent", updated.Spent),
			)

			if err = sleep(ctx, w.cooldown); err != nil {
				return turn, err
			}
		}

		if turn.after.Exhausted() {
			break
		}
	}

	return turn, nil
}

// recordPurchase сохраняет покупку в свежей копии конфигурации.
func (w *PurchaseWorker) recordPurchase(ctx context.Context, profileID string, price int64) (entity.Profile, error) {
	var updated entity.Profile

	_, err := w.store.Update(ctx, w.userID, func(cfg *entity.Configuration) error {
		_, idx, ok := cfg.ProfileByID(profileID)
		if !ok {
			return ErrProfileGone
		}

		cfg.Profiles[idx].RecordPurchase(price)
		updated = cfg.Profiles[idx]

		return nil
	})
	if err != nil {
		return entity.Profile{}, fmt.Errorf("record purchase: %w", err)
	}

	return updated, nil
}

// evaluate завершает исчерпанный профиль и возвращает запись отчёта, если
// профиль завершён или продвинулся.
func (w *PurchaseWorker) evaluate(ctx context.Context, turn profileTurn) (entity.ProfileReport, bool, error) {
	switch Evaluate(turn.before, turn.after) {
	case ProfileCompleted:
		var (
			done  entity.Profile
			index int
			found bool
		)

		_, err := w.store.Update(ctx, w.userID, func(cfg *entity.Configuration) error {
			done, index, found = cfg.ProfileByID(turn.after.ID)
			if !found {
				return nil
			}

			if done.Exhausted() {
				cfg.Profiles[index].Done = true
				done.Done = true
			}

			return nil
		})
		if err != nil {
			return entity.ProfileReport{}, false, fmt.Errorf("complete profile: %w", err)
		}

		if !found {
			return entity.ProfileReport{}, false, nil
		}

		logger(ctx).Info("profile completed", slog.Int(logx.FieldProfileIndex, index))

		return entity.NewProfileReport(index, done, turn.ledger), true, nil
	case ProfilePartial:
		cfg, err := w.store.LoadValid(ctx, w.userID)
		if err != nil {
			return entity.ProfileReport{}, false, fmt.Errorf("store.LoadValid: %w", err)
		}

		current, index, found := cfg.ProfileByID(turn.after.ID)
		if !found {
			return entity.ProfileReport{}, false, nil
		}

		logger(ctx).Warn("profile not completed", slog.Int(logx.FieldProfileIndex, index))

		return entity.NewProfileReport(index, current, turn.ledger), true, nil
	default:
		return entity.ProfileReport{}, false, nil
	}
}

// report применяет решение по итогам цикла: выключение и уведомления.
func (w *PurchaseWorker) report(ctx context.Context, summary CycleSummary) (CycleOutcome, error) {
	cfg, err := w.store.LoadValid(ctx, w.userID)
	if err != nil {
		return OutcomeIdle, fmt.Errorf("store.LoadValid: %w", err)
	}

	decision := Decide(summary, cfg)

	if decision.Deactivate {
		if _, err = w.store.Update(ctx, w.userID, func(cfg *entity.Configuration) error {
			cfg.Active = false

			return nil
		}); err != nil {
			return OutcomeIdle, fmt.Errorf("deactivate: %w", err)
		}

		w.metrics.observeDeactivation(decision.Outcome)
		logger(ctx).Info("purchasing deactivated", slog.String(logx.FieldOutcome, decision.Outcome.String()))
	}

	if decision.NotifyTotalFailure {
		logger(ctx).Warn("no purchase succeeded in any profile")
		w.refreshBalance(ctx, true)
		w.notify(ctx, report.TotalFailureNotice)
	}

	if decision.SendReport {
		w.notify(ctx, report.Cycle(summary.Reports, w.userID))
	}

	if decision.NotifyAllDone {
		w.notify(ctx, report.AllDoneNotice)
	}

	if decision.Outcome == OutcomeNoInventory {
		logger(ctx).Debug("no matching inventory for any profile")
	}

	// активный воркер остаётся в Reporting до следующего цикла
	if decision.Deactivate || !cfg.Active {
		if err = w.transition(StateIdle); err != nil {
			return OutcomeIdle, err
		}
	}

	return decision.Outcome, nil
}

// notify уведомление без гарантии доставки, id отправленного сообщения
// запоминается как последнее сообщение меню.
func (w *PurchaseWorker) notify(ctx context.Context, text string) {
	messageID, err := w.notifier.Notify(ctx, w.userID, text)
	if err != nil {
		logger(ctx).Warn("notification failed", logx.Error(err))

		return
	}

	if messageID == 0 {
		return
	}

	if _, err = w.store.Update(ctx, w.userID, func(cfg *entity.Configuration) error {
		cfg.LastMenuMessageID = &messageID

		return nil
	}); err != nil {
		logger(ctx).Warn("store last message id", logx.Error(err))
	}
}

func (w *PurchaseWorker) refreshBalance(ctx context.Context, force bool) {
	if w.balance == nil {
		return
	}

	refresh := w.balance.Refresh
	if force {
		refresh = w.balance.ForceRefresh
	}

	if _, err := refresh(ctx, w.userID); err != nil {
		logger(ctx).Warn("balance refresh failed", logx.Error(err))
	}
}
