package connectors

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"gift_autobuy/pkg/logx"
)

type Mongo struct {
	value          *mongo.Client
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
	init           sync.Once
}

func (m *Mongo) Client(ctx context.Context) *mongo.Client {
	m.init.Do(func() {
		connectCtx, cancel := context.WithTimeout(ctx, m.ConnectTimeout)
		defer cancel()

		clientOptions := options.Client().
			ApplyURI(m.URI).
			SetMaxPoolSize(m.MaxPoolSize).
			SetMinPoolSize(m.MinPoolSize).
			SetServerSelectionTimeout(m.ConnectTimeout)

		m.value = lo.Must(mongo.Connect(connectCtx, clientOptions))

		lo.Must0(m.value.Ping(connectCtx, readpref.Primary()))

		logger(ctx).Info("mongo connected", slog.String("database", m.Database))
	})

	return m.value
}

func (m *Mongo) DB(ctx context.Context) *mongo.Database {
	return m.Client(ctx).Database(m.Database)
}

func (m *Mongo) Close(ctx context.Context) {
	if m.value == nil {
		return
	}

	if err := m.value.Disconnect(ctx); err != nil {
		logger(ctx).Error("mongoClient.Disconnect", logx.Error(err))
	}

	logger(ctx).Info("mongo disconnected", slog.String("database", m.Database))
}
