package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gift_autobuy/internal/domain"
	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/value"
	"gift_autobuy/pkg/errcodes"
	"gift_autobuy/pkg/logx"
)

// ErrSenderUnavailable для отправителя не настроен исполнитель или он не готов.
var ErrSenderUnavailable = errors.New("sender is unavailable")

type Executor interface {
	Purchase(ctx context.Context, req entity.PurchaseRequest) error
}

type readiness interface {
	Ready() bool
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.PurchaseEvent) error
}

// Router выбирает исполнителя покупки по отправителю профиля и публикует
// событие о каждой попытке.
type Router struct {
	executors map[value.Sender]Executor
	events    EventPublisher
	now       func() time.Time
}

func NewRouter() *Router {
	return &Router{
		executors: make(map[value.Sender]Executor),
		now:       time.Now,
	}
}

func (r *Router) WithExecutor(sender value.Sender, executor Executor) *Router {
	r.executors[sender] = executor

	return r
}

func (r *Router) WithEvents(events EventPublisher) *Router {
	r.events = events

	return r
}

// Available есть ли исполнитель для отправителя и готов ли он.
func (r *Router) Available(sender value.Sender) bool {
	executor, ok := r.executors[sender]
	if !ok {
		return false
	}

	if rd, ok := executor.(readiness); ok {
		return rd.Ready()
	}

	return true
}

// Purchase одна попытка покупки. Любая ошибка означает неудачу попытки.
func (r *Router) Purchase(ctx context.Context, profileID string, req entity.PurchaseRequest) error {
	if !r.Available(req.Sender) {
		return fmt.Errorf("%w: %s", ErrSenderUnavailable, req.Sender)
	}

	err := r.executors[req.Sender].Purchase(ctx, req)

	r.publish(ctx, entity.PurchaseEvent{
		UserID:    req.RequestedBy,
		ProfileID: profileID,
		ItemID:    req.ItemID,
		Price:     req.Price,
		Recipient: req.Recipient.String(),
		Sender:    req.Sender.String(),
		Success:   err == nil,
		At:        r.now().UTC(),
	})

	if err != nil {
		return domain.WrapError(err, errcodes.PurchaseFailed, fmt.Sprintf("purchase %s", req.ItemID))
	}

	return nil
}

// publish событие вторично по отношению к покупке, ошибка только логируется.
func (r *Router) publish(ctx context.Context, event entity.PurchaseEvent) {
	if r.events == nil {
		return
	}

	if err := r.events.Publish(ctx, event); err != nil {
		logger(ctx).Warn("publish purchase event", slog.String(logx.FieldItemID, event.ItemID), logx.Error(err))
	}
}
