package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRecord документ коллекции: сам JSON хранится строкой, чтобы
// байты конфигурации не зависели от bson-кодека.
type mongoRecord struct {
	UserID    int64     `bson:"_id"`
	Document  string    `bson:"document"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoBackend struct {
	collection *mongo.Collection
}

func NewMongoBackend(db *mongo.Database, collection string) *MongoBackend {
	return &MongoBackend{collection: db.Collection(collection)}
}

func (b *MongoBackend) Read(ctx context.Context, userID int64) ([]byte, error) {
	var record mongoRecord

	if err := b.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("collection.FindOne: %w", err)
	}

	return []byte(record.Document), nil
}

func (b *MongoBackend) Write(ctx context.Context, userID int64, data []byte) error {
	record := mongoRecord{
		UserID:    userID,
		Document:  string(data),
		UpdatedAt: time.Now().UTC(),
	}

	_, err := b.collection.ReplaceOne(
		ctx,
		bson.M{"_id": userID},
		record,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("collection.ReplaceOne: %w", err)
	}

	return nil
}
