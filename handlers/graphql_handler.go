package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"friends-server/graph"
	"friends-server/middleware"
	"friends-server/utils/errors"

	"github.com/graphql-go/graphql"
)

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// GraphQLHandler serves /graphql. Registration and introspection run
// unauthenticated, every other operation goes through the gate first.
// Mutations are only accepted over POST.
type GraphQLHandler struct {
	schema graphql.Schema
	gate   *middleware.Gate
}

func NewGraphQLHandler(schema graphql.Schema, gate *middleware.Gate) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, gate: gate}
}

func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := readGraphQLRequest(w, r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	if r.Method == http.MethodGet && graph.IsMutation(req.Query, req.OperationName) {
		w.Header().Set("Allow", http.MethodPost)
		middleware.WriteError(w, r, errors.NewAPIError("METHOD_NOT_ALLOWED", "Can only perform a mutation operation from a POST request", http.StatusMethodNotAllowed))
		return
	}

	ctx := r.Context()
	access := graph.Classify(req.Query, req.OperationName)
	if access == graph.AccessProtected {
		id, err := h.gate.Authenticate(r)
		if err != nil {
			h.gate.Reject(w, r, err)
			return
		}
		ctx = middleware.WithIdentity(ctx, id)
	}
	ctx = graph.WithAuthorization(ctx, r.Header.Get("Authorization"))

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	if result.HasErrors() {
		middleware.LoggerFromContext(ctx).WithField("errors", result.Errors).Debug("graphql request returned errors")
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

func readGraphQLRequest(w http.ResponseWriter, r *http.Request) (graphQLRequest, error) {
	var req graphQLRequest
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return req, errors.NewAPIError(errors.ErrInvalidInput.Code, "variables must be a JSON object", http.StatusBadRequest)
			}
		}
	case http.MethodPost:
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/graphql") {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				return req, errors.ErrInvalidInput
			}
			req.Query = string(body)
			break
		}
		if err := decodeJSON(w, r, &req); err != nil {
			return req, err
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		return req, errors.NewAPIError(errors.ErrInvalidInput.Code, "Must provide query string", http.StatusBadRequest)
	}
	return req, nil
}
