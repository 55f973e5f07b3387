package memory

import (
	"context"

	"friends-server/models"
	"friends-server/utils/errors"

	"github.com/hashicorp/go-memdb"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FriendRepository struct {
	db *memdb.MemDB
}

func (r *FriendRepository) Insert(_ context.Context, friend models.Friend) (models.Friend, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(friendsTable, indexEmail, friend.Email)
	if err != nil {
		return models.Friend{}, errors.Store(err, "failed to insert friend")
	}
	if existing != nil {
		return models.Friend{}, errors.Conflict("A user with email " + friend.Email + " already exists")
	}

	friend.ID = primitive.NewObjectID().Hex()
	stored := friend
	if err := txn.Insert(friendsTable, &stored); err != nil {
		return models.Friend{}, errors.Store(err, "failed to insert friend")
	}
	txn.Commit()
	return friend, nil
}

func (r *FriendRepository) first(index, value string) (models.Friend, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(friendsTable, index, value)
	if err != nil {
		return models.Friend{}, errors.Store(err, "failed to find friend")
	}
	if raw == nil {
		return models.Friend{}, errors.ErrNotFound
	}
	return *raw.(*models.Friend), nil
}

func (r *FriendRepository) FindByEmail(_ context.Context, email string) (models.Friend, error) {
	return r.first(indexEmail, email)
}

func (r *FriendRepository) FindByID(_ context.Context, id string) (models.Friend, error) {
	return r.first(indexID, id)
}

func (r *FriendRepository) FindAll(_ context.Context) ([]models.Friend, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(friendsTable, indexID)
	if err != nil {
		return nil, errors.Store(err, "failed to list friends")
	}
	list := []models.Friend{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		list = append(list, *raw.(*models.Friend))
	}
	return list, nil
}

func (r *FriendRepository) Update(_ context.Context, email string, patch models.FriendPatch) (models.UpdateResult, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(friendsTable, indexEmail, email)
	if err != nil {
		return models.UpdateResult{}, errors.Store(err, "failed to update friend")
	}
	if raw == nil {
		return models.UpdateResult{}, errors.ErrNotFound
	}

	updated := *raw.(*models.Friend)
	if !patch.Apply(&updated) {
		return models.UpdateResult{Friend: updated}, nil
	}
	stored := updated
	if err := txn.Insert(friendsTable, &stored); err != nil {
		return models.UpdateResult{}, errors.Store(err, "failed to update friend")
	}
	txn.Commit()
	return models.UpdateResult{Friend: updated, Modified: 1}, nil
}

func (r *FriendRepository) DeleteByEmail(_ context.Context, email string) (bool, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(friendsTable, indexEmail, email)
	if err != nil {
		return false, errors.Store(err, "failed to delete friend")
	}
	if raw == nil {
		return false, nil
	}
	if err := txn.Delete(friendsTable, raw); err != nil {
		return false, errors.Store(err, "failed to delete friend")
	}
	txn.Commit()
	return true, nil
}
