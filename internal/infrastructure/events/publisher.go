package events

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/pkg/logx"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher публикует события о попытках покупки, ключ сообщения
// это id пользователя, поэтому события одного пользователя упорядочены.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event entity.PurchaseEvent) error {
	value, err := jsoniter.Marshal(event)
	if err != nil {
		return fmt.Errorf("jsoniter.Marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("gift.purchase")},
		},
	}

	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		logger(ctx).Warn(
			"purchase event not published",
			slog.Int64(logx.FieldUserID, event.UserID),
			slog.String(logx.FieldItemID, event.ItemID),
			logx.Error(err),
		)

		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

// NopPublisher используется, когда брокеры не настроены.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, entity.PurchaseEvent) error {
	return nil
}
