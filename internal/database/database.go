package database

import (
	"context"
	"time"

	"github.com/rishmeh/bhookh/internal/config"
	"github.com/rishmeh/bhookh/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes a connection to MongoDB and prepares the indexes
// the service relies on.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.DBName)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	logger.Log.Info("Connected to database")
	return db, nil
}

// ensureIndexes creates the TTL index that removes donations 24 hours after
// creation. The hourly janitor sweep covers the case where TTL deletion lags.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("donations").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(86400),
	})
	return err
}
