// Package mongostore is the MongoDB store driver: friends and positions live in
// two collections of the configured database.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	FriendsCollection   = "friends"
	PositionsCollection = "positions"
)

// Connect opens a client and pings the deployment.
func Connect(ctx context.Context, uri string, log logrus.FieldLogger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	log.Info("connected to MongoDB")
	return client, nil
}

// Setup creates the repositories for db and makes sure their indexes exist.
func Setup(ctx context.Context, db *mongo.Database) (*FriendRepository, *PositionIndex, error) {
	friends := NewFriendRepository(db)
	if err := friends.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}
	positions := NewPositionIndex(db)
	if err := positions.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}
	return friends, positions, nil
}
