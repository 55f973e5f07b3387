package handlers

import (
	"context"
	"net/http"
	"strconv"

	"friends-server/middleware"
	"friends-server/models"
	"friends-server/utils/errors"
)

const defaultNearbyDistance = 3000

type PositionService interface {
	Upsert(ctx context.Context, email string, lon, lat float64) (models.Position, error)
	Get(ctx context.Context, email string) (models.Position, error)
	FindNearby(ctx context.Context, email string, lon, lat, maxMeters float64) ([]models.NearbyFriend, error)
}

type PositionHandler struct {
	positions PositionService
}

type NearbyFriendsResponse struct {
	NearbyFriends []models.NearbyFriend `json:"nearby_friends"`
	Count         int                   `json:"count"`
	Lat           float64               `json:"lat"`
	Lon           float64               `json:"lon"`
	Radius        float64               `json:"radius"`
}

func NewPositionHandler(positions PositionService) *PositionHandler {
	return &PositionHandler{positions: positions}
}

func (h *PositionHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	email, err := selfEmail(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	var input struct {
		Longitude *float64 `json:"longitude"`
		Latitude  *float64 `json:"latitude"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if input.Longitude == nil || input.Latitude == nil {
		middleware.WriteError(w, r, errors.Validation(`"longitude" and "latitude" are required`))
		return
	}

	pos, err := h.positions.Upsert(r.Context(), email, *input.Longitude, *input.Latitude)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, pos)
}

func (h *PositionHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, err := selfEmail(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	pos, err := h.positions.Get(r.Context(), email)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, pos)
}

func (h *PositionHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		middleware.WriteError(w, r, errors.ErrInvalidInput)
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		middleware.WriteError(w, r, errors.ErrInvalidInput)
		return
	}
	radius := float64(defaultNearbyDistance)
	if raw := q.Get("distance"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.WriteError(w, r, errors.ErrInvalidInput)
			return
		}
	}

	id, _ := middleware.IdentityFromContext(r.Context())
	friends, err := h.positions.FindNearby(r.Context(), id.Email, lon, lat, radius)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, NearbyFriendsResponse{
		NearbyFriends: friends,
		Count:         len(friends),
		Lat:           lat,
		Lon:           lon,
		Radius:        radius,
	})
}
