package mongostore

import (
	"context"
	stderrors "errors"
	"fmt"

	"friends-server/models"
	"friends-server/utils/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PositionIndex struct {
	collection *mongo.Collection
}

func NewPositionIndex(db *mongo.Database) *PositionIndex {
	return &PositionIndex{collection: db.Collection(PositionsCollection)}
}

// EnsureIndexes creates the one-position-per-email index and the 2dsphere
// index $geoNear needs.
func (p *PositionIndex) EnsureIndexes(ctx context.Context) error {
	_, err := p.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("location_2dsphere"),
		},
	})
	if err != nil {
		return fmt.Errorf("create position indexes: %w", err)
	}
	return nil
}

func (p *PositionIndex) Upsert(ctx context.Context, pos models.Position) (models.Position, error) {
	update := bson.M{
		"$set": bson.M{
			"location":    pos.Location,
			"lastUpdated": pos.LastUpdated,
		},
	}
	_, err := p.collection.UpdateOne(ctx, bson.M{"email": pos.Email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return models.Position{}, errors.Store(err, "failed to store position")
	}
	return pos, nil
}

func (p *PositionIndex) Get(ctx context.Context, email string) (models.Position, error) {
	var pos models.Position
	err := p.collection.FindOne(ctx, bson.M{"email": email}).Decode(&pos)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return models.Position{}, errors.ErrNotFound
		}
		return models.Position{}, errors.Store(err, "failed to read position")
	}
	return pos, nil
}

type nearbyRow struct {
	Email    string          `bson:"email"`
	Location models.GeoPoint `bson:"location"`
	Distance float64         `bson:"distance"`
}

// Nearby runs $geoNear, which returns documents sorted by distance in meters.
func (p *PositionIndex) Nearby(ctx context.Context, email string, point models.GeoPoint, maxMeters float64) ([]models.PositionHit, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: point},
			{Key: "distanceField", Value: "distance"},
			{Key: "maxDistance", Value: maxMeters},
			{Key: "spherical", Value: true},
			{Key: "query", Value: bson.M{"email": bson.M{"$ne": email}}},
		}}},
	}
	cursor, err := p.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Store(err, "failed to query nearby positions")
	}
	defer cursor.Close(ctx)

	var rows []nearbyRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Store(err, "failed to decode nearby positions")
	}
	hits := make([]models.PositionHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, models.PositionHit{Email: row.Email, Location: row.Location, Distance: row.Distance})
	}
	return hits, nil
}
