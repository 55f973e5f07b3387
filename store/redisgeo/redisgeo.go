// Package redisgeo keeps friend positions in a Redis GEO set. GEOADD replaces
// an existing member, so every email has exactly one position.
package redisgeo

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"friends-server/models"
	"friends-server/utils/errors"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	GeoKey     = "positions:geo"
	UpdatedKey = "positions:updated"
)

// Connect builds a client and pings the server.
func Connect(ctx context.Context, addr, password string, db int, log logrus.FieldLogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.WithField("addr", addr).Info("connected to Redis")
	return client, nil
}

type PositionIndex struct {
	client redis.Cmdable
}

func NewPositionIndex(client redis.Cmdable) *PositionIndex {
	return &PositionIndex{client: client}
}

func (p *PositionIndex) Upsert(ctx context.Context, pos models.Position) (models.Position, error) {
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.GeoAdd(ctx, GeoKey, &redis.GeoLocation{
			Name:      pos.Email,
			Longitude: pos.Location.Lon(),
			Latitude:  pos.Location.Lat(),
		})
		pipe.HSet(ctx, UpdatedKey, pos.Email, pos.LastUpdated.UTC().Format(time.RFC3339Nano))
		return nil
	})
	if err != nil {
		return models.Position{}, errors.Store(err, "failed to store position")
	}
	return pos, nil
}

func (p *PositionIndex) Get(ctx context.Context, email string) (models.Position, error) {
	coords, err := p.client.GeoPos(ctx, GeoKey, email).Result()
	if err != nil {
		return models.Position{}, errors.Store(err, "failed to read position")
	}
	if len(coords) == 0 || coords[0] == nil {
		return models.Position{}, errors.ErrNotFound
	}

	pos := models.Position{
		Email:    email,
		Location: models.NewPoint(coords[0].Longitude, coords[0].Latitude),
	}
	stamp, err := p.client.HGet(ctx, UpdatedKey, email).Result()
	switch {
	case err == nil:
		pos.LastUpdated, _ = time.Parse(time.RFC3339Nano, stamp)
	case stderrors.Is(err, redis.Nil):
	default:
		return models.Position{}, errors.Store(err, "failed to read position timestamp")
	}
	return pos, nil
}

// Nearby uses GEORADIUS in meters, sorted nearest first. Coordinates come
// back as stored by Redis, which quantizes them to about 0.6 mm.
func (p *PositionIndex) Nearby(ctx context.Context, email string, point models.GeoPoint, maxMeters float64) ([]models.PositionHit, error) {
	results, err := p.client.GeoRadius(ctx, GeoKey, point.Lon(), point.Lat(), &redis.GeoRadiusQuery{
		Radius:    maxMeters,
		Unit:      "m",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, errors.Store(err, "failed to query nearby positions")
	}

	hits := make([]models.PositionHit, 0, len(results))
	for _, r := range results {
		if r.Name == email {
			continue
		}
		hits = append(hits, models.PositionHit{
			Email:    r.Name,
			Location: models.NewPoint(r.Longitude, r.Latitude),
			Distance: r.Dist,
		})
	}
	return hits, nil
}
