package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		opName string
		want   Access
	}{
		{"create friend", `mutation { createFriend(input: {firstName: "Jan", lastName: "Olsen", email: "jan@b.dk", password: "secret"}) { id } }`, "", AccessPublic},
		{"named create friend", `mutation Register($in: FriendInput!) { createFriend(input: $in) { id } }`, "Register", AccessPublic},
		{"aliased create friend", `mutation { a: createFriend(input: $x) { id } b: createFriend(input: $y) { id } }`, "", AccessPublic},
		{"create plus delete", `mutation { createFriend(input: $x) { id } deleteFriend(input: "pp@b.dk") }`, "", AccessProtected},
		{"introspection", `query IntrospectionQuery { __schema { queryType { name } } }`, "IntrospectionQuery", AccessPublic},
		{"typename only", `{ __typename }`, "", AccessPublic},
		{"introspection name with data", `query IntrospectionQuery { __schema { types { name } } allFriends { email } }`, "IntrospectionQuery", AccessProtected},
		{"createFriend in a string", `query { getFriendByEmail(input: "createFriend") { email } }`, "", AccessProtected},
		{"createFriend as query comment", "# createFriend\n{ allFriends { email } }", "", AccessProtected},
		{"plain query", `{ allFriends { email } }`, "", AccessProtected},
		{"fragment hiding a field", `mutation { ...M } fragment M on Mutation { createFriend(input: $x) { id } deleteFriend(input: "x") }`, "", AccessProtected},
		{"fragment with public field", `mutation { ...M } fragment M on Mutation { createFriend(input: $x) { id } }`, "", AccessPublic},
		{"inline fragment", `mutation { ... on Mutation { updateFriend(input: $x) { id } } }`, "", AccessProtected},
		{"selects protected operation by name", `mutation A { createFriend(input: $x) { id } } query B { allFriends { email } }`, "B", AccessProtected},
		{"selects public operation by name", `mutation A { createFriend(input: $x) { id } } query B { allFriends { email } }`, "A", AccessPublic},
		{"ambiguous operations", `mutation A { createFriend(input: $x) { id } } query B { allFriends { email } }`, "", AccessInvalid},
		{"unknown operation name", `mutation A { createFriend(input: $x) { id } }`, "B", AccessInvalid},
		{"syntax error", `mutation { createFriend(`, "", AccessInvalid},
		{"unknown fragment", `mutation { ...Missing }`, "", AccessInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.query, tt.opName))
		})
	}
}

func TestIsMutation(t *testing.T) {
	require.True(t, IsMutation(`mutation { deleteFriend(input: "pp@b.dk") }`, ""))
	require.True(t, IsMutation(`query A { allFriends { email } } mutation B { deleteFriend(input: "x") }`, "B"))
	require.False(t, IsMutation(`query A { allFriends { email } } mutation B { deleteFriend(input: "x") }`, "A"))
	require.False(t, IsMutation(`{ allFriends { email } }`, ""))
	require.False(t, IsMutation(`mutation {`, ""))
}
