package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"friends-server/utils/errors"

	"github.com/sirupsen/logrus"
)

// Recovery turns a panic into a 500 response and logs the stack.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					LoggerFromContext(r.Context()).WithFields(logrus.Fields{
						"panic": rec,
						"stack": string(debug.Stack()),
					}).Error("panic recovered")
					WriteError(w, r, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes err as {"errorCode", "msg", "code"}. Errors that are not
// APIErrors become a 500 whose details stay in the log.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := errors.As(err)
	if !ok {
		apiErr = errors.Wrap(err, "UNKNOWN_ERROR", "Unexpected error", errors.ErrInternal.Status)
	}
	body := *apiErr
	if apiErr.Status >= http.StatusInternalServerError {
		LoggerFromContext(r.Context()).WithFields(logrus.Fields{
			"code":    apiErr.Code,
			"details": apiErr.Details,
		}).Error(apiErr.Message)
		body.Details = ""
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(&body)
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
