package handlers

import (
	"encoding/json"
	"net/http"

	"friends-server/middleware"
	"friends-server/utils/errors"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewAPIError(errors.ErrInvalidInput.Code, "Invalid request data", errors.ErrInvalidInput.Status, err.Error())
	}
	return nil
}

// selfEmail is the subject of a "me" operation. A skipped gate without a
// basic username has no subject.
func selfEmail(r *http.Request) (string, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok || id.Email == "" {
		return "", errors.Unauthorized("This endpoint requires an authenticated user")
	}
	return id.Email, nil
}

func requireAdmin(r *http.Request) error {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return errors.ErrUnauthorized
	}
	if !id.IsAdmin() {
		return errors.ErrNotAuthorized
	}
	return nil
}

// NotFound is the JSON 404 for unmatched API paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, r, errors.NotFound("not found"))
}

// Demo answers the liveness probe.
func Demo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Server is up"))
}
