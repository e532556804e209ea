package connectors

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"gift_autobuy/pkg/logx"
)

type Kafka struct {
	value        *kafka.Writer
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	init         sync.Once
}

func (k *Kafka) Writer(ctx context.Context) *kafka.Writer {
	k.init.Do(func() {
		k.value = &kafka.Writer{
			Addr:         kafka.TCP(k.Brokers...),
			Topic:        k.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
			BatchTimeout: k.BatchTimeout,
		}

		logger(ctx).Info(
			"kafka writer initialized",
			slog.String("brokers", strings.Join(k.Brokers, ",")),
			slog.String("topic", k.Topic),
		)
	})

	return k.value
}

func (k *Kafka) Close(ctx context.Context) {
	if k.value == nil {
		return
	}

	if err := k.value.Close(); err != nil {
		logger(ctx).Error("kafkaWriter.Close", logx.Error(err))
	}

	logger(ctx).Info("kafka writer closed", slog.String("topic", k.Topic))
}
