package models

import "time"

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

func (p GeoPoint) Lon() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Position is the last known location of a friend, one per email.
type Position struct {
	Email       string    `json:"email" bson:"email"`
	Location    GeoPoint  `json:"point" bson:"location"`
	LastUpdated time.Time `json:"lastUpdated" bson:"lastUpdated"`
}

// PositionHit is a raw proximity result from a position index.
type PositionHit struct {
	Email    string
	Location GeoPoint
	Distance float64 // meters
}

// NearbyFriend is a proximity result joined with the friend's name.
type NearbyFriend struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Location GeoPoint `json:"point"`
	Distance float64  `json:"distance"`
}
