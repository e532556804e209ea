package worker

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"gift_autobuy/internal/domain"
	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
	"gift_autobuy/pkg/errcodes"
	"gift_autobuy/pkg/logx"
)

type ConfigStore interface {
	LoadValid(ctx context.Context, userID int64) (entity.Configuration, error)
	Update(ctx context.Context, userID int64, fn func(cfg *entity.Configuration) error) (entity.Configuration, error)
}

type Inventory interface {
	Query(ctx context.Context, filter entity.ItemFilter) ([]entity.Item, error)
}

type Purchaser interface {
	Purchase(ctx context.Context, profileID string, req entity.PurchaseRequest) error
	Available(sender value.Sender) bool
}

type BalanceRefresher interface {
	Refresh(ctx context.Context, userID int64) (int64, error)
	ForceRefresh(ctx context.Context, userID int64) (int64, error)
}

type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) (int64, error)
}

// Status снимок состояния воркера.
type Status struct {
	UserID      int64
	State       State
	Running     bool
	LastOutcome CycleOutcome
	LastCycleAt time.Time
	Cycles      int64
}

// PurchaseWorker фоновый цикл закупки для одного владельца.
type PurchaseWorker struct {
	userID    int64
	store     ConfigStore
	inventory Inventory
	purchaser Purchaser
	balance   BalanceRefresher
	notifier  Notifier
	metrics   *Metrics

	cooldown      time.Duration
	idleInterval  time.Duration
	cycleInterval time.Duration
	errorDelay    time.Duration

	state stateMachine

	statusMu    sync.Mutex
	lastOutcome CycleOutcome
	lastCycleAt time.Time
	cycles      int64

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewPurchaseWorker(
	userID int64,
	store ConfigStore,
	inventory Inventory,
	purchaser Purchaser,
	notifier Notifier,
) *PurchaseWorker {
	return &PurchaseWorker{
		userID:        userID,
		store:         store,
		inventory:     inventory,
		purchaser:     purchaser,
		notifier:      notifier,
		cooldown:      300 * time.Millisecond,
		idleInterval:  time.Second,
		cycleInterval: 500 * time.Millisecond,
		errorDelay:    500 * time.Millisecond,
	}
}

func (w *PurchaseWorker) WithBalance(balance BalanceRefresher) *PurchaseWorker {
	w.balance = balance

	return w
}

func (w *PurchaseWorker) WithMetrics(metrics *Metrics) *PurchaseWorker {
	w.metrics = metrics

	return w
}

// WithCooldown пауза между успешными покупками.
func (w *PurchaseWorker) WithCooldown(cooldown time.Duration) *PurchaseWorker {
	w.cooldown = cooldown

	return w
}

// WithIntervals паузы после неактивного цикла, рабочего цикла и ошибки.
func (w *PurchaseWorker) WithIntervals(idle, cycle, errorDelay time.Duration) *PurchaseWorker {
	w.idleInterval = idle
	w.cycleInterval = cycle
	w.errorDelay = errorDelay

	return w
}

func (w *PurchaseWorker) UserID() int64 {
	return w.userID
}

func (w *PurchaseWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return domain.NewError(errcodes.WorkerAlreadyRunning, "worker is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("purchase worker stopped with error", slog.Int64(logx.FieldUserID, w.userID), logx.Error(err))
		}
	}()

	return nil
}

func (w *PurchaseWorker) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()

		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}

	w.mu.Unlock()

	w.wg.Wait()
}

// IsRunning возвращает текущий статус
func (w *PurchaseWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.isRunning
}

func (w *PurchaseWorker) Status() Status {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()

	return Status{
		UserID:      w.userID,
		State:       w.state.get(),
		Running:     w.IsRunning(),
		LastOutcome: w.lastOutcome,
		LastCycleAt: w.lastCycleAt,
		Cycles:      w.cycles,
	}
}

// Run крутит циклы до отмены контекста. Ошибка или паника одного цикла
// логируется, после паузы цикл повторяется.
func (w *PurchaseWorker) Run(ctx context.Context) error {
	ctx = w.withLogger(ctx)

	logger(ctx).Info("purchase worker started")
	defer logger(ctx).Info("purchase worker stopped")

	for {
		if err := sleep(ctx, w.safeCycle(ctx)); err != nil {
			return err
		}
	}
}

func (w *PurchaseWorker) safeCycle(ctx context.Context) (delay time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			logger(ctx).Error(
				"panic in purchase cycle",
				slog.Any(logx.FieldError, rec),
				slog.String(logx.FieldStack, string(debug.Stack())),
			)

			w.state.reset()
			delay = w.errorDelay
		}
	}()

	outcome, err := w.RunCycle(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger(ctx).Error("purchase cycle failed", logx.Error(err))
		}

		w.state.reset()

		return w.errorDelay
	}

	if outcome == OutcomeIdle {
		return w.idleInterval
	}

	return w.cycleInterval
}

func (w *PurchaseWorker) recordCycle(outcome CycleOutcome) {
	w.statusMu.Lock()
	w.lastOutcome = outcome
	w.lastCycleAt = time.Now()
	w.cycles++
	w.statusMu.Unlock()

	w.metrics.observeCycle(outcome)
}

func (w *PurchaseWorker) transition(next State) error {
	if err := w.state.to(next); err != nil {
		return err
	}

	w.metrics.observeState(w.userID, next)

	return nil
}

func (w *PurchaseWorker) withLogger(ctx context.Context) context.Context {
	return contextWithAttrs(ctx, slog.Int64(logx.FieldUserID, w.userID))
}

// sleep пауза с учётом отмены контекста.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
