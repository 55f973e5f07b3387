// Package graph is the GraphQL surface over the friend and position stores.
package graph

import (
	"github.com/graphql-go/graphql"
)

var pointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Point",
	Fields: graphql.Fields{
		"type":        &graphql.Field{Type: graphql.String},
		"coordinates": &graphql.Field{Type: graphql.NewList(graphql.Float), Description: "[longitude, latitude]"},
	},
})

var friendType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Friend",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.ID},
		"firstName": &graphql.Field{Type: graphql.String},
		"lastName":  &graphql.Field{Type: graphql.String},
		"email":     &graphql.Field{Type: graphql.String},
		"role":      &graphql.Field{Type: graphql.String},
	},
})

var positionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Position",
	Fields: graphql.Fields{
		"email":       &graphql.Field{Type: graphql.String},
		"point":       &graphql.Field{Type: pointType},
		"lastUpdated": &graphql.Field{Type: graphql.DateTime},
	},
})

var nearbyFriendType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NearbyFriend",
	Fields: graphql.Fields{
		"email":    &graphql.Field{Type: graphql.String},
		"name":     &graphql.Field{Type: graphql.String},
		"point":    &graphql.Field{Type: pointType},
		"distance": &graphql.Field{Type: graphql.Float, Description: "meters"},
	},
})

var friendInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "FriendInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"firstName": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"lastName":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var friendEditInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "FriendEditInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"firstName": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"lastName":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		"password":  &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var positionInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "PositionInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"longitude": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		"latitude":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var positionInputWithDistance = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "PositionInputWithDistance",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"longitude": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		"latitude":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		"distance":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
	},
})

func inputArg(t graphql.Input) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)},
	}
}

// NewSchema builds the executable schema on top of r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"allFriends": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(friendType)),
				Resolve: r.allFriends,
			},
			"getFriendByEmail": &graphql.Field{
				Type:    friendType,
				Args:    inputArg(graphql.String),
				Resolve: r.getFriendByEmail,
			},
			"getAllFriendsProxy": &graphql.Field{
				Type:        graphql.NewList(friendType),
				Description: "Friend list fetched through the REST endpoint with the caller's credentials",
				Resolve:     r.getAllFriendsProxy,
			},
			"getPosition": &graphql.Field{
				Type:    positionType,
				Args:    inputArg(graphql.String),
				Resolve: r.getPosition,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createFriend": &graphql.Field{
				Type:    friendType,
				Args:    inputArg(friendInput),
				Resolve: r.createFriend,
			},
			"updateFriend": &graphql.Field{
				Type:    friendType,
				Args:    inputArg(friendEditInput),
				Resolve: r.updateFriend,
			},
			"deleteFriend": &graphql.Field{
				Type:    graphql.Boolean,
				Args:    inputArg(graphql.String),
				Resolve: r.deleteFriend,
			},
			"addOrUpdatePosition": &graphql.Field{
				Type:    graphql.Boolean,
				Args:    inputArg(positionInput),
				Resolve: r.addOrUpdatePosition,
			},
			"findNearbyPlayers": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(nearbyFriendType)),
				Args:    inputArg(positionInputWithDistance),
				Resolve: r.findNearbyPlayers,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
