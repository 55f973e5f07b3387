package memory

import (
	"context"
	"math"
	"sort"

	"friends-server/models"
	"friends-server/utils/errors"

	"github.com/hashicorp/go-memdb"
)

const earthRadiusMeters = 6371008.8

type PositionIndex struct {
	db *memdb.MemDB
}

func (p *PositionIndex) Upsert(_ context.Context, pos models.Position) (models.Position, error) {
	txn := p.db.Txn(true)
	defer txn.Abort()

	stored := clonePosition(pos)
	if err := txn.Insert(positionsTable, &stored); err != nil {
		return models.Position{}, errors.Store(err, "failed to store position")
	}
	txn.Commit()
	return pos, nil
}

func (p *PositionIndex) Get(_ context.Context, email string) (models.Position, error) {
	txn := p.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(positionsTable, indexID, email)
	if err != nil {
		return models.Position{}, errors.Store(err, "failed to read position")
	}
	if raw == nil {
		return models.Position{}, errors.ErrNotFound
	}
	return clonePosition(*raw.(*models.Position)), nil
}

// clonePosition detaches the coordinates slice from the stored object.
func clonePosition(pos models.Position) models.Position {
	pos.Location.Coordinates = append([]float64(nil), pos.Location.Coordinates...)
	return pos
}

func (p *PositionIndex) Nearby(_ context.Context, email string, point models.GeoPoint, maxMeters float64) ([]models.PositionHit, error) {
	txn := p.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(positionsTable, indexID)
	if err != nil {
		return nil, errors.Store(err, "failed to query positions")
	}

	hits := []models.PositionHit{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		pos := raw.(*models.Position)
		if pos.Email == email {
			continue
		}
		d := haversine(point.Lon(), point.Lat(), pos.Location.Lon(), pos.Location.Lat())
		if d > maxMeters {
			continue
		}
		hits = append(hits, models.PositionHit{Email: pos.Email, Location: clonePosition(*pos).Location, Distance: d})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits, nil
}

// haversine returns the great-circle distance in meters.
func haversine(lon1, lat1, lon2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}
