package services

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"friends-server/models"
	"friends-server/utils/errors"

	"github.com/sirupsen/logrus"
)

// FriendService owns validated access to the friends collection.
type FriendService struct {
	repo   FriendRepository
	hasher Hasher
	log    logrus.FieldLogger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewFriendService(repo FriendRepository, hasher Hasher, log logrus.FieldLogger) *FriendService {
	return &FriendService{repo: repo, hasher: hasher, log: log}
}

// Register validates the candidate, hashes its password and stores it with
// role "user". The returned friend has an id and no digest.
func (s *FriendService) Register(ctx context.Context, in models.RegisterInput) (models.Friend, error) {
	if err := validateInput(in); err != nil {
		return models.Friend{}, err
	}
	return s.create(ctx, in, models.RoleUser)
}

func (s *FriendService) create(ctx context.Context, in models.RegisterInput, role string) (models.Friend, error) {
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.Friend{}, errors.Wrap(err, "HASH_ERROR", "failed to hash password", errors.ErrInternal.Status)
	}

	created, err := s.repo.Insert(ctx, models.Friend{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: digest,
		Role:         role,
	})
	if err != nil {
		return models.Friend{}, err
	}

	s.log.WithFields(logrus.Fields{"email": created.Email, "id": created.ID, "role": role}).Info("friend registered")
	return created.Redacted(), nil
}

// Update applies patch to the friend identified by email. Only first name,
// last name and password are changed; a new password is re-hashed.
func (s *FriendService) Update(ctx context.Context, email string, patch models.FriendPatch) (models.UpdateResult, error) {
	if patch.Email == "" {
		patch.Email = email
	}
	if err := validateInput(patch); err != nil {
		return models.UpdateResult{}, err
	}

	if patch.Password != nil {
		digest, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return models.UpdateResult{}, errors.Wrap(err, "HASH_ERROR", "failed to hash password", errors.ErrInternal.Status)
		}
		patch.Password = &digest
	}

	res, err := s.repo.Update(ctx, email, patch)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return models.UpdateResult{}, errors.NotFound("User email not found")
		}
		return models.UpdateResult{}, err
	}

	s.log.WithFields(logrus.Fields{"email": email, "modified": res.Modified}).Info("friend updated")
	res.Friend = res.Friend.Redacted()
	return res, nil
}

// Remove deletes the friend with the given email and reports whether a
// record was removed. A missing friend is not an error.
func (s *FriendService) Remove(ctx context.Context, email string) (bool, error) {
	removed, err := s.repo.DeleteByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if removed {
		s.log.WithField("email", email).Info("friend removed")
	}
	return removed, nil
}

// Get looks a friend up by email or by store generated id.
func (s *FriendService) Get(ctx context.Context, emailOrID string) (models.Friend, error) {
	var (
		f   models.Friend
		err error
	)
	if strings.Contains(emailOrID, "@") {
		f, err = s.repo.FindByEmail(ctx, emailOrID)
	} else {
		f, err = s.repo.FindByID(ctx, emailOrID)
	}
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return models.Friend{}, errors.NotFound("User not found")
		}
		return models.Friend{}, err
	}
	return f.Redacted(), nil
}

func (s *FriendService) ListAll(ctx context.Context) ([]models.Friend, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Friend, 0, len(all))
	for _, f := range all {
		out = append(out, f.Redacted())
	}
	return out, nil
}

// Verify returns the friend when password matches the stored digest, and nil
// for an unknown email or a wrong password. Only store faults are errors.
func (s *FriendService) Verify(ctx context.Context, email, password string) (*models.Friend, error) {
	f, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			// keep the response time of unknown emails close to wrong passwords
			s.hasher.Compare(s.dummy(), password)
			return nil, nil
		}
		return nil, err
	}
	if !s.hasher.Compare(f.PasswordHash, password) {
		return nil, nil
	}
	redacted := f.Redacted()
	return &redacted, nil
}

func (s *FriendService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyDigest
}

// EnsureAdmin creates the admin account unless a friend with that email
// already exists. It reports whether an account was created.
func (s *FriendService) EnsureAdmin(ctx context.Context, in models.RegisterInput) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, in.Email)
	if err == nil {
		return false, nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return false, err
	}
	if err := validateInput(in); err != nil {
		return false, err
	}
	if _, err := s.create(ctx, in, models.RoleAdmin); err != nil {
		if stderrors.Is(err, errors.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
