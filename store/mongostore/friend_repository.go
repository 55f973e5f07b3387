package mongostore

import (
	"context"
	stderrors "errors"
	"fmt"

	"friends-server/models"
	"friends-server/utils/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type friendDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
}

func (d friendDocument) toModel() models.Friend {
	return models.Friend{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         d.Role,
	}
}

type FriendRepository struct {
	collection *mongo.Collection
}

func NewFriendRepository(db *mongo.Database) *FriendRepository {
	return &FriendRepository{collection: db.Collection(FriendsCollection)}
}

// EnsureIndexes creates the unique index that makes registration an atomic
// conditional insert.
func (r *FriendRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create unique index on friends.email: %w", err)
	}
	return nil
}

func (r *FriendRepository) Insert(ctx context.Context, friend models.Friend) (models.Friend, error) {
	doc := friendDocument{
		FirstName: friend.FirstName,
		LastName:  friend.LastName,
		Email:     friend.Email,
		Password:  friend.PasswordHash,
		Role:      friend.Role,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Friend{}, errors.Conflict("A user with email " + friend.Email + " already exists")
		}
		return models.Friend{}, errors.Store(err, "failed to create friend in database")
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.Friend{}, errors.Store(nil, "failed to get friend id after insertion")
	}
	doc.ID = id
	return doc.toModel(), nil
}

func (r *FriendRepository) findOne(ctx context.Context, filter bson.M) (models.Friend, error) {
	var doc friendDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return models.Friend{}, errors.ErrNotFound
		}
		return models.Friend{}, errors.Store(err, "failed to find friend")
	}
	return doc.toModel(), nil
}

func (r *FriendRepository) FindByEmail(ctx context.Context, email string) (models.Friend, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *FriendRepository) FindByID(ctx context.Context, id string) (models.Friend, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Friend{}, errors.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *FriendRepository) FindAll(ctx context.Context) ([]models.Friend, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Store(err, "failed to list friends")
	}
	defer cursor.Close(ctx)

	var docs []friendDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Store(err, "failed to decode friends")
	}
	list := make([]models.Friend, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.toModel())
	}
	return list, nil
}

// patchSet builds the $set document holding only the fields present in patch.
func patchSet(patch models.FriendPatch) bson.M {
	set := bson.M{}
	if patch.FirstName != nil {
		set["firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["lastName"] = *patch.LastName
	}
	if patch.Password != nil {
		set["password"] = *patch.Password
	}
	return set
}

// Update applies patch in one round trip. The pre-image comes back from
// FindOneAndUpdate and the same patch is merged into it, which yields the
// stored post-image and whether anything changed.
func (r *FriendRepository) Update(ctx context.Context, email string, patch models.FriendPatch) (models.UpdateResult, error) {
	set := patchSet(patch)
	if len(set) == 0 {
		friend, err := r.FindByEmail(ctx, email)
		if err != nil {
			return models.UpdateResult{}, err
		}
		return models.UpdateResult{Friend: friend}, nil
	}

	var before friendDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return models.UpdateResult{}, errors.ErrNotFound
		}
		return models.UpdateResult{}, errors.Store(err, "failed to update friend")
	}

	friend := before.toModel()
	var modified int64
	if patch.Apply(&friend) {
		modified = 1
	}
	return models.UpdateResult{Friend: friend, Modified: modified}, nil
}

func (r *FriendRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return false, errors.Store(err, "failed to delete friend")
	}
	return res.DeletedCount == 1, nil
}
