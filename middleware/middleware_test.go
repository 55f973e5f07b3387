package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"friends-server/models"
	"friends-server/utils/errors"
	"friends-server/utils/logger"

	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	users map[string]models.Friend
	pass  string
}

func (s stubVerifier) Verify(_ context.Context, email, password string) (*models.Friend, error) {
	f, ok := s.users[email]
	if !ok || password != s.pass {
		return nil, nil
	}
	return &f, nil
}

func (s stubVerifier) Get(_ context.Context, emailOrID string) (models.Friend, error) {
	f, ok := s.users[emailOrID]
	if !ok {
		return models.Friend{}, errors.NotFound("User not found")
	}
	return f, nil
}

type stubTokens struct{}

func (stubTokens) ParseToken(token string) (models.Identity, error) {
	switch token {
	case "good":
		return models.Identity{Email: "tok@b.dk", Role: models.RoleUser}, nil
	case "promoted":
		return models.Identity{Email: "aa@a.dk", Role: models.RoleUser}, nil
	case "orphan":
		return models.Identity{Email: "gone@b.dk", Role: models.RoleUser}, nil
	}
	return models.Identity{}, errors.ErrUnauthorized
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		WriteJSON(w, http.StatusOK, id)
	})
}

func newTestGate(tokens TokenParser, skip bool) *Gate {
	verifier := stubVerifier{
		pass: "secret",
		users: map[string]models.Friend{
			"pp@b.dk":  {Email: "pp@b.dk", Role: models.RoleUser},
			"aa@a.dk":  {Email: "aa@a.dk", Role: models.RoleAdmin},
			"tok@b.dk": {Email: "tok@b.dk", Role: models.RoleUser},
		},
	}
	return NewGate(verifier, tokens, GateOptions{Realm: "example", Skip: skip})
}

func TestGateRequire(t *testing.T) {
	tests := []struct {
		name     string
		tokens   TokenParser
		skip     bool
		prepare  func(r *http.Request)
		status   int
		identity models.Identity
	}{
		{
			name:    "no credentials",
			prepare: func(r *http.Request) {},
			status:  http.StatusUnauthorized,
		},
		{
			name:    "wrong password",
			prepare: func(r *http.Request) { r.SetBasicAuth("pp@b.dk", "nope") },
			status:  http.StatusUnauthorized,
		},
		{
			name:     "valid basic",
			prepare:  func(r *http.Request) { r.SetBasicAuth("pp@b.dk", "secret") },
			status:   http.StatusOK,
			identity: models.Identity{Email: "pp@b.dk", Role: models.RoleUser},
		},
		{
			name:     "admin role carried",
			prepare:  func(r *http.Request) { r.SetBasicAuth("aa@a.dk", "secret") },
			status:   http.StatusOK,
			identity: models.Identity{Email: "aa@a.dk", Role: models.RoleAdmin},
		},
		{
			name:    "bearer without token support",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			status:  http.StatusUnauthorized,
		},
		{
			name:     "valid bearer",
			tokens:   stubTokens{},
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			status:   http.StatusOK,
			identity: models.Identity{Email: "tok@b.dk", Role: models.RoleUser},
		},
		{
			name:     "bearer role read from store",
			tokens:   stubTokens{},
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer promoted") },
			status:   http.StatusOK,
			identity: models.Identity{Email: "aa@a.dk", Role: models.RoleAdmin},
		},
		{
			name:    "bearer for deleted friend",
			tokens:  stubTokens{},
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer orphan") },
			status:  http.StatusUnauthorized,
		},
		{
			name:    "invalid bearer",
			tokens:  stubTokens{},
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") },
			status:  http.StatusUnauthorized,
		},
		{
			name:     "skipped gate without username",
			skip:     true,
			prepare:  func(r *http.Request) {},
			status:   http.StatusOK,
			identity: models.Identity{Role: models.RoleAdmin, Bypass: true},
		},
		{
			name:     "skipped gate keeps unverified username",
			skip:     true,
			prepare:  func(r *http.Request) { r.SetBasicAuth("pp@b.dk", "whatever") },
			status:   http.StatusOK,
			identity: models.Identity{Email: "pp@b.dk", Role: models.RoleAdmin, Bypass: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := newTestGate(tt.tokens, tt.skip)
			req := httptest.NewRequest(http.MethodGet, "/api/friends/all", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			gate.Require(echoIdentity()).ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				require.Equal(t, `Basic realm="example"`, rec.Header().Get("WWW-Authenticate"))
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				require.EqualValues(t, 401, body["errorCode"])
				return
			}
			var got models.Identity
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Equal(t, tt.identity, got)
		})
	}
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	WriteError(rec, req, errors.NotFound("User not found"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"errorCode":404,"msg":"User not found","code":"NOT_FOUND"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(rec, req, errors.Store(context.DeadlineExceeded, "failed to list friends"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "deadline")
}

func TestRecovery(t *testing.T) {
	h := RequestLogger(logger.Discard())(Recovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	require.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	h := RequestLogger(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORS(t *testing.T) {
	h := CORSMiddleware([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/friends/all", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	preflight.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	other := httptest.NewRequest(http.MethodGet, "/api/friends/all", nil)
	other.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
