package refresh

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository provides refresh-token persistence operations
type Repository interface {
	Create(ctx context.Context, t *Token) error
	GetByValue(ctx context.Context, value string) (*Token, error)
	DeleteByValue(ctx context.Context, value string) error
}

// MongoRepository implements Repository using a Mongo collection
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, t *Token) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.ExpiresAt.IsZero() {
		t.ExpiresAt = now.Add(7 * 24 * time.Hour)
	}
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *MongoRepository) GetByValue(ctx context.Context, value string) (*Token, error) {
	var t Token
	if err := r.col.FindOne(ctx, bson.M{"value": value}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *MongoRepository) DeleteByValue(ctx context.Context, value string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"value": value})
	return err
}
