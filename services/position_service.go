package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"friends-server/models"
	"friends-server/utils/errors"

	"github.com/sirupsen/logrus"
)

// PositionService keeps the last known location of each friend and answers
// "who is near me" questions.
type PositionService struct {
	index   PositionIndex
	friends FriendRepository
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewPositionService(index PositionIndex, friends FriendRepository, log logrus.FieldLogger) *PositionService {
	return &PositionService{index: index, friends: friends, log: log, now: time.Now}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateCoordinates(lon, lat float64) error {
	if !finite(lon) || !finite(lat) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return errors.Validation(fmt.Sprintf("invalid coordinates: lon=%f, lat=%f", lon, lat))
	}
	return nil
}

// Upsert writes the friend's position, replacing any earlier one.
func (s *PositionService) Upsert(ctx context.Context, email string, lon, lat float64) (models.Position, error) {
	if err := validateCoordinates(lon, lat); err != nil {
		return models.Position{}, err
	}
	if _, err := s.friends.FindByEmail(ctx, email); err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return models.Position{}, errors.NotFound("User not found")
		}
		return models.Position{}, err
	}

	pos, err := s.index.Upsert(ctx, models.Position{
		Email:       email,
		Location:    models.NewPoint(lon, lat),
		LastUpdated: s.now().UTC(),
	})
	if err != nil {
		return models.Position{}, err
	}
	s.log.WithFields(logrus.Fields{"email": email, "lon": lon, "lat": lat}).Debug("position updated")
	return pos, nil
}

func (s *PositionService) Get(ctx context.Context, email string) (models.Position, error) {
	pos, err := s.index.Get(ctx, email)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return models.Position{}, errors.NotFound("No position found for " + email)
		}
		return models.Position{}, err
	}
	return pos, nil
}

// FindNearby returns the friends within maxMeters of the point, nearest
// first, excluding email itself. Positions whose friend is gone are dropped.
func (s *PositionService) FindNearby(ctx context.Context, email string, lon, lat, maxMeters float64) ([]models.NearbyFriend, error) {
	if err := validateCoordinates(lon, lat); err != nil {
		return nil, err
	}
	if !finite(maxMeters) || maxMeters <= 0 {
		return nil, errors.Validation("distance must be a positive number of meters")
	}

	hits, err := s.index.Nearby(ctx, email, models.NewPoint(lon, lat), maxMeters)
	if err != nil {
		return nil, err
	}

	out := make([]models.NearbyFriend, 0, len(hits))
	for _, hit := range hits {
		f, err := s.friends.FindByEmail(ctx, hit.Email)
		if err != nil {
			if stderrors.Is(err, errors.ErrNotFound) {
				s.log.WithField("email", hit.Email).Debug("skipping position of unknown friend")
				continue
			}
			return nil, err
		}
		out = append(out, models.NearbyFriend{
			Email:    hit.Email,
			Name:     f.DisplayName(),
			Location: hit.Location,
			Distance: hit.Distance,
		})
	}

	s.log.WithFields(logrus.Fields{"email": email, "radius": maxMeters, "found": len(out)}).Debug("nearby lookup")
	return out, nil
}
