package services

import (
	"context"
	"testing"

	"friends-server/models"
	"friends-server/store/memory"
	"friends-server/utils/logger"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store     *memory.Store
	friends   *FriendService
	positions *PositionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := memory.New()
	require.NoError(t, err)

	log := logger.Discard()
	friendRepo := store.Friends()
	return &fixture{
		store:     store,
		friends:   NewFriendService(friendRepo, NewBcryptHasher(bcrypt.MinCost), log),
		positions: NewPositionService(store.Positions(), friendRepo, log),
	}
}

func (f *fixture) register(t *testing.T, first, last, email, password string) models.Friend {
	t.Helper()
	created, err := f.friends.Register(context.Background(), models.RegisterInput{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  password,
	})
	require.NoError(t, err)
	return created
}

func strPtr(s string) *string { return &s }
