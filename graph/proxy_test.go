package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"friends-server/models"
	"friends-server/utils/errors"

	"github.com/stretchr/testify/require"
)

func TestFriendsProxyForwardsAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/friends/all" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Basic cHBAYi5kazpzZWNyZXQ=" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errorCode":401,"msg":"Access denied","code":"UNAUTHORIZED"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"firstName":"Peter","lastName":"Pan","email":"pp@b.dk"}]`))
	}))
	defer srv.Close()

	proxy := NewFriendsProxy(srv.URL+"/", srv.Client())

	friends, err := proxy.FetchAll(context.Background(), "Basic cHBAYi5kazpzZWNyZXQ=")
	require.NoError(t, err)
	require.Equal(t, []models.FriendDTO{{FirstName: "Peter", LastName: "Pan", Email: "pp@b.dk"}}, friends)

	_, err = proxy.FetchAll(context.Background(), "")
	apiErr, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Access denied", apiErr.Message)
}
