package middleware

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"friends-server/models"
	"friends-server/utils/errors"
)

type identityKey struct{}

// WithIdentity attaches the verified caller to ctx.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller attached by the gate, if any.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok
}

// Verifier checks basic credentials. A nil friend means rejected. Get
// resolves the subject of a bearer token against the store.
type Verifier interface {
	Verify(ctx context.Context, email, password string) (*models.Friend, error)
	Get(ctx context.Context, emailOrID string) (models.Friend, error)
}

// TokenParser turns a bearer token into an identity.
type TokenParser interface {
	ParseToken(token string) (models.Identity, error)
}

type GateOptions struct {
	Realm string
	// Skip disables verification. Every request then runs as an admin whose
	// email is the unverified basic username, if one was sent.
	Skip bool
}

// Gate is the per-request credential check in front of protected routes.
type Gate struct {
	friends Verifier
	tokens  TokenParser
	opts    GateOptions
}

// NewGate builds a gate. tokens may be nil, in which case bearer
// credentials are refused.
func NewGate(friends Verifier, tokens TokenParser, opts GateOptions) *Gate {
	if opts.Realm == "" {
		opts.Realm = "friends"
	}
	return &Gate{friends: friends, tokens: tokens, opts: opts}
}

// Authenticate resolves the caller of r. Failures are ErrUnauthorized,
// store faults pass through.
func (g *Gate) Authenticate(r *http.Request) (models.Identity, error) {
	if g.opts.Skip {
		user, _, _ := r.BasicAuth()
		return models.Identity{Email: user, Role: models.RoleAdmin, Bypass: true}, nil
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if g.tokens == nil {
			return models.Identity{}, errors.Unauthorized("Bearer tokens are not enabled")
		}
		claims, err := g.tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return models.Identity{}, err
		}
		// A valid signature is not enough: the account may have been deleted
		// or had its role changed since the token was issued.
		friend, err := g.friends.Get(r.Context(), claims.Email)
		if err != nil {
			if stderrors.Is(err, errors.ErrNotFound) {
				return models.Identity{}, errors.Unauthorized("Token subject no longer exists")
			}
			return models.Identity{}, err
		}
		return models.Identity{Email: friend.Email, Role: friend.Role}, nil
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return models.Identity{}, errors.ErrUnauthorized
	}
	friend, err := g.friends.Verify(r.Context(), user, pass)
	if err != nil {
		return models.Identity{}, err
	}
	if friend == nil {
		return models.Identity{}, errors.ErrUnauthorized
	}
	return models.Identity{Email: friend.Email, Role: friend.Role}, nil
}

// Reject answers an authentication failure. Credential failures get the
// basic challenge, anything else goes through WriteError.
func (g *Gate) Reject(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := errors.As(err)
	if !ok || apiErr.Status != http.StatusUnauthorized {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("WWW-Authenticate", `Basic realm="`+g.opts.Realm+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(errors.NewAPIError(apiErr.Code, "Access denied", http.StatusUnauthorized))
}

// Require lets only authenticated requests through and attaches the identity.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authenticate(r)
		if err != nil {
			LoggerFromContext(r.Context()).WithField("reason", err.Error()).Debug("request rejected by gate")
			g.Reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
