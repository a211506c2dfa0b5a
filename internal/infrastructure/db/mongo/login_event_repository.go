package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sunbooking/booking-system/internal/core/domain"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

const collectionLoginEvents = "login_events"

// loginEventRetention bounds how long audit rows are kept.
const loginEventRetention = 90 * 24 * time.Hour

// LoginEventRepository implements ports.LoginEventRepository using MongoDB.
type LoginEventRepository struct {
	db *mongo.Database
}

func NewLoginEventRepository(db *mongo.Database) ports.LoginEventRepository {
	return &LoginEventRepository{db: db}
}

// InsertLoginEvent persists one login outcome to the audit collection.
func (r *LoginEventRepository) InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error {
	doc := bson.M{
		"flow":         string(event.Flow),
		"email":        event.Email,
		"source":       event.SourceKey,
		"outcome":      string(event.Outcome),
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.Reason != "" {
		doc["reason"] = event.Reason
	}

	_, err := r.db.Collection(collectionLoginEvents).InsertOne(ctx, doc)
	return err
}

// EnsureLoginEventIndexes indexes the audit collection by source and expires
// old rows.
func EnsureLoginEventIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(collectionLoginEvents).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "source", Value: 1}, {Key: "timestamp", Value: -1}}},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(loginEventRetention.Seconds())),
		},
	})
	return err
}
