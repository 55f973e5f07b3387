package graph

import (
	"context"

	"friends-server/middleware"
	"friends-server/models"
	"friends-server/utils/errors"

	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"
)

type FriendStore interface {
	Register(ctx context.Context, in models.RegisterInput) (models.Friend, error)
	Update(ctx context.Context, email string, patch models.FriendPatch) (models.UpdateResult, error)
	Remove(ctx context.Context, email string) (bool, error)
	Get(ctx context.Context, emailOrID string) (models.Friend, error)
	ListAll(ctx context.Context) ([]models.Friend, error)
}

type PositionStore interface {
	Upsert(ctx context.Context, email string, lon, lat float64) (models.Position, error)
	Get(ctx context.Context, email string) (models.Position, error)
	FindNearby(ctx context.Context, email string, lon, lat, maxMeters float64) ([]models.NearbyFriend, error)
}

type authorizationKey struct{}

// WithAuthorization keeps the raw Authorization header for resolvers that
// call other endpoints on the caller's behalf.
func WithAuthorization(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, authorizationKey{}, header)
}

func authorizationFromContext(ctx context.Context) string {
	h, _ := ctx.Value(authorizationKey{}).(string)
	return h
}

// Resolver holds the stores the schema resolves against.
type Resolver struct {
	friends   FriendStore
	positions PositionStore
	proxy     *FriendsProxy
	log       logrus.FieldLogger
}

func NewResolver(friends FriendStore, positions PositionStore, proxy *FriendsProxy, log logrus.FieldLogger) *Resolver {
	return &Resolver{friends: friends, positions: positions, proxy: proxy, log: log}
}

func caller(ctx context.Context) (models.Identity, error) {
	id, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return models.Identity{}, errors.ErrUnauthorized
	}
	return id, nil
}

// actOn checks that the caller may operate on the friend with email.
func actOn(ctx context.Context, email string) error {
	id, err := caller(ctx)
	if err != nil {
		return err
	}
	if !id.CanActOn(email) {
		return errors.ErrNotAuthorized
	}
	return nil
}

func inputMap(p graphql.ResolveParams) map[string]interface{} {
	m, _ := p.Args["input"].(map[string]interface{})
	return m
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func floatField(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func (r *Resolver) allFriends(p graphql.ResolveParams) (interface{}, error) {
	if _, err := caller(p.Context); err != nil {
		return nil, err
	}
	return r.friends.ListAll(p.Context)
}

func (r *Resolver) getFriendByEmail(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["input"].(string)
	if err := actOn(p.Context, email); err != nil {
		return nil, err
	}
	return r.friends.Get(p.Context, email)
}

func (r *Resolver) getAllFriendsProxy(p graphql.ResolveParams) (interface{}, error) {
	if _, err := caller(p.Context); err != nil {
		return nil, err
	}
	friends, err := r.proxy.FetchAll(p.Context, authorizationFromContext(p.Context))
	if err != nil {
		r.log.WithError(err).Warn("friends proxy failed")
		return nil, err
	}
	return friends, nil
}

func (r *Resolver) getPosition(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["input"].(string)
	if err := actOn(p.Context, email); err != nil {
		return nil, err
	}
	return r.positions.Get(p.Context, email)
}

func (r *Resolver) createFriend(p graphql.ResolveParams) (interface{}, error) {
	in := inputMap(p)
	first, _ := stringField(in, "firstName")
	last, _ := stringField(in, "lastName")
	email, _ := stringField(in, "email")
	password, _ := stringField(in, "password")
	return r.friends.Register(p.Context, models.RegisterInput{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  password,
	})
}

func (r *Resolver) updateFriend(p graphql.ResolveParams) (interface{}, error) {
	in := inputMap(p)
	email, _ := stringField(in, "email")
	if err := actOn(p.Context, email); err != nil {
		return nil, err
	}

	patch := models.FriendPatch{Email: email}
	if v, ok := stringField(in, "firstName"); ok {
		patch.FirstName = &v
	}
	if v, ok := stringField(in, "lastName"); ok {
		patch.LastName = &v
	}
	if v, ok := stringField(in, "password"); ok {
		patch.Password = &v
	}
	res, err := r.friends.Update(p.Context, email, patch)
	if err != nil {
		return nil, err
	}
	return res.Friend, nil
}

func (r *Resolver) deleteFriend(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["input"].(string)
	if err := actOn(p.Context, email); err != nil {
		return nil, err
	}
	return r.friends.Remove(p.Context, email)
}

func (r *Resolver) addOrUpdatePosition(p graphql.ResolveParams) (interface{}, error) {
	in := inputMap(p)
	email, _ := stringField(in, "email")
	if err := actOn(p.Context, email); err != nil {
		return nil, err
	}
	if _, err := r.positions.Upsert(p.Context, email, floatField(in, "longitude"), floatField(in, "latitude")); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Resolver) findNearbyPlayers(p graphql.ResolveParams) (interface{}, error) {
	if _, err := caller(p.Context); err != nil {
		return nil, err
	}
	in := inputMap(p)
	email, _ := stringField(in, "email")
	return r.positions.FindNearby(p.Context, email,
		floatField(in, "longitude"), floatField(in, "latitude"), floatField(in, "distance"))
}
