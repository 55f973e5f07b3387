package services

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher is a one-way salted password hash.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(digest, plain string) bool
}

// BcryptHasher hashes with bcrypt at a fixed cost.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Compare is constant time in the digest comparison.
func (h BcryptHasher) Compare(digest, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
