package services

import (
	"context"
	"net/http"
	"time"

	"friends-server/models"
	"friends-server/utils/errors"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService mints and checks bearer tokens for verified friends. It is an
// alternative to sending basic credentials on every request.
type AuthService struct {
	friends   *FriendService
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(friends *FriendService, jwtSecret string, ttl time.Duration) *AuthService {
	return &AuthService{friends: friends, jwtSecret: []byte(jwtSecret), ttl: ttl, now: time.Now}
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies the credentials and returns a signed token and its expiry.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	friend, err := s.friends.Verify(ctx, email, password)
	if err != nil {
		return "", time.Time{}, err
	}
	if friend == nil {
		return "", time.Time{}, errors.NewAPIError("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnauthorized)
	}

	exp := s.now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role: friend.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   friend.Email,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}
	return signed, exp, nil
}

// ParseToken validates a token and returns the identity it carries.
func (s *AuthService) ParseToken(tokenString string) (models.Identity, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAPIError("INVALID_TOKEN", "Unexpected signing method", http.StatusUnauthorized)
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return models.Identity{}, errors.ErrUnauthorized
	}
	return models.Identity{Email: claims.Subject, Role: claims.Role}, nil
}
