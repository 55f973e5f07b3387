package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"friends-server/models"
	"friends-server/utils/errors"
)

// FriendsProxy reads the friend list through the REST surface, acting with
// the caller's own credentials.
type FriendsProxy struct {
	baseURL string
	client  *http.Client
}

func NewFriendsProxy(baseURL string, client *http.Client) *FriendsProxy {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FriendsProxy{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// FetchAll calls GET /api/friends/all forwarding authorization as is.
func (p *FriendsProxy) FetchAll(ctx context.Context, authorization string) ([]models.FriendDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/friends/all", nil)
	if err != nil {
		return nil, errors.Wrap(err, "PROXY_ERROR", "failed to build proxy request", http.StatusInternalServerError)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "PROXY_ERROR", "friends endpoint unreachable", http.StatusBadGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr errors.APIError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			if apiErr.Code == "" {
				apiErr.Code = "PROXY_ERROR"
			}
			apiErr.Status = resp.StatusCode
			return nil, &apiErr
		}
		return nil, errors.NewAPIError("PROXY_ERROR", fmt.Sprintf("friends endpoint answered %d", resp.StatusCode), resp.StatusCode)
	}

	var friends []models.FriendDTO
	if err := json.NewDecoder(resp.Body).Decode(&friends); err != nil {
		return nil, errors.Wrap(err, "PROXY_ERROR", "invalid response from friends endpoint", http.StatusBadGateway)
	}
	return friends, nil
}
