package services

import (
	"context"

	"friends-server/models"
)

// FriendRepository is the document collection behind the friend service.
// Lookups return errors.ErrNotFound when nothing matches, Insert returns
// errors.ErrConflict when the email is taken.
type FriendRepository interface {
	Insert(ctx context.Context, friend models.Friend) (models.Friend, error)
	FindByEmail(ctx context.Context, email string) (models.Friend, error)
	FindByID(ctx context.Context, id string) (models.Friend, error)
	FindAll(ctx context.Context) ([]models.Friend, error)
	Update(ctx context.Context, email string, patch models.FriendPatch) (models.UpdateResult, error)
	DeleteByEmail(ctx context.Context, email string) (bool, error)
}

// PositionIndex stores one position per email and answers proximity queries.
// Nearby excludes the querying email and sorts hits by distance, nearest first.
type PositionIndex interface {
	Upsert(ctx context.Context, pos models.Position) (models.Position, error)
	Get(ctx context.Context, email string) (models.Position, error)
	Nearby(ctx context.Context, email string, point models.GeoPoint, maxMeters float64) ([]models.PositionHit, error)
}
