package memory

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"friends-server/models"
	"friends-server/utils/errors"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func TestFriendRepository_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Friends()

	created, err := repo.Insert(ctx, models.Friend{FirstName: "Peter", LastName: "Pan", Email: "pp@b.dk", PasswordHash: "h", Role: models.RoleUser})
	require.NoError(t, err)
	require.Len(t, created.ID, 24)

	byEmail, err := repo.FindByEmail(ctx, "pp@b.dk")
	require.NoError(t, err)
	require.Equal(t, created, byEmail)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, byID)

	_, err = repo.FindByEmail(ctx, "nobody@b.dk")
	require.True(t, stderrors.Is(err, errors.ErrNotFound))
}

func TestFriendRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Friends()

	_, err := repo.Insert(ctx, models.Friend{FirstName: "Peter", LastName: "Pan", Email: "pp@b.dk"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, models.Friend{FirstName: "Other", LastName: "Pan", Email: "pp@b.dk"})
	require.True(t, stderrors.Is(err, errors.ErrConflict))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestFriendRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Friends()

	_, err := repo.Insert(ctx, models.Friend{FirstName: "Peter", LastName: "Pan", Email: "pp@b.dk", PasswordHash: "h"})
	require.NoError(t, err)

	last := "XXXX"
	res, err := repo.Update(ctx, "pp@b.dk", models.FriendPatch{Email: "pp@b.dk", LastName: &last})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Modified)
	require.Equal(t, "XXXX", res.Friend.LastName)
	require.Equal(t, "Peter", res.Friend.FirstName)

	res, err = repo.Update(ctx, "pp@b.dk", models.FriendPatch{Email: "pp@b.dk", LastName: &last})
	require.NoError(t, err)
	require.EqualValues(t, 0, res.Modified)

	_, err = repo.Update(ctx, "nobody@b.dk", models.FriendPatch{Email: "nobody@b.dk", LastName: &last})
	require.True(t, stderrors.Is(err, errors.ErrNotFound))

	removed, err := repo.DeleteByEmail(ctx, "pp@b.dk")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = repo.DeleteByEmail(ctx, "pp@b.dk")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestFriendRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Friends()

	_, err := repo.Insert(ctx, models.Friend{FirstName: "Peter", LastName: "Pan", Email: "pp@b.dk"})
	require.NoError(t, err)

	f, err := repo.FindByEmail(ctx, "pp@b.dk")
	require.NoError(t, err)
	f.FirstName = "Changed"

	again, err := repo.FindByEmail(ctx, "pp@b.dk")
	require.NoError(t, err)
	require.Equal(t, "Peter", again.FirstName)
}

func TestPositionIndex_UpsertKeepsOnePerEmail(t *testing.T) {
	ctx := context.Background()
	idx := newStore(t).Positions()

	_, err := idx.Upsert(ctx, models.Position{Email: "pp@b.dk", Location: models.NewPoint(12.5, 55.7), LastUpdated: time.Now()})
	require.NoError(t, err)
	_, err = idx.Upsert(ctx, models.Position{Email: "pp@b.dk", Location: models.NewPoint(12.6, 55.8), LastUpdated: time.Now()})
	require.NoError(t, err)

	got, err := idx.Get(ctx, "pp@b.dk")
	require.NoError(t, err)
	require.Equal(t, []float64{12.6, 55.8}, got.Location.Coordinates)

	hits, err := idx.Nearby(ctx, "someone@else.dk", models.NewPoint(12.6, 55.8), 1000)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	_, err = idx.Get(ctx, "nobody@b.dk")
	require.True(t, stderrors.Is(err, errors.ErrNotFound))
}

func TestPositionIndex_NearbySortedAndExcludesSelf(t *testing.T) {
	ctx := context.Background()
	idx := newStore(t).Positions()

	// Copenhagen area, roughly 0 m, ~700 m, ~2.2 km and ~30 km from the origin
	points := map[string]models.GeoPoint{
		"me@b.dk":   models.NewPoint(12.5683, 55.6761),
		"near@b.dk": models.NewPoint(12.5790, 55.6780),
		"mid@b.dk":  models.NewPoint(12.6000, 55.6800),
		"far@b.dk":  models.NewPoint(12.0800, 55.6400),
	}
	for email, p := range points {
		_, err := idx.Upsert(ctx, models.Position{Email: email, Location: p})
		require.NoError(t, err)
	}

	hits, err := idx.Nearby(ctx, "me@b.dk", points["me@b.dk"], 5000)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "near@b.dk", hits[0].Email)
	require.Equal(t, "mid@b.dk", hits[1].Email)
	require.Less(t, hits[0].Distance, hits[1].Distance)
	require.InDelta(t, 700, hits[0].Distance, 100)
}

func TestHaversine(t *testing.T) {
	require.InDelta(t, 0, haversine(10, 50, 10, 50), 1e-9)
	// one degree of latitude is about 111.2 km
	require.InDelta(t, 111195, haversine(0, 0, 0, 1), 50)
}

func TestPositionIndex_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	idx := newStore(t).Positions()

	_, err := idx.Upsert(ctx, models.Position{Email: "pp@b.dk", Location: models.NewPoint(12.5, 55.7), LastUpdated: time.Now()})
	require.NoError(t, err)

	got, err := idx.Get(ctx, "pp@b.dk")
	require.NoError(t, err)
	got.Location.Coordinates[0] = 0

	hits, err := idx.Nearby(ctx, "someone@else.dk", models.NewPoint(12.5, 55.7), 1000)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	hits[0].Location.Coordinates[1] = 0

	again, err := idx.Get(ctx, "pp@b.dk")
	require.NoError(t, err)
	require.Equal(t, []float64{12.5, 55.7}, again.Location.Coordinates)
}
