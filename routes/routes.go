// Package routes wires handlers and middleware into the HTTP handler tree.
package routes

import (
	"net/http"

	"friends-server/handlers"
	"friends-server/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Friends   *handlers.FriendHandler
	Positions *handlers.PositionHandler
	GraphQL   *handlers.GraphQLHandler
	// Auth is nil when bearer tokens are disabled.
	Auth        *handlers.AuthHandler
	Gate        *middleware.Gate
	CORSOrigins []string
	Log         logrus.FieldLogger
}

func New(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery())

	r.HandleFunc("/demo", handlers.Demo).Methods(http.MethodGet)
	r.Handle("/graphql", d.GraphQL).Methods(http.MethodGet, http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()

	if d.Auth != nil {
		api.HandleFunc("/auth/login", d.Auth.Login).Methods(http.MethodPost)
	}

	// registration is the only public friends route
	api.HandleFunc("/friends", d.Friends.Register).Methods(http.MethodPost)
	api.HandleFunc("/friends/", d.Friends.Register).Methods(http.MethodPost)

	friends := api.PathPrefix("/friends").Subrouter()
	friends.Use(d.Gate.Require)
	friends.HandleFunc("/all", d.Friends.All).Methods(http.MethodGet)
	friends.HandleFunc("/me", d.Friends.Me).Methods(http.MethodGet)
	friends.HandleFunc("/editme", d.Friends.EditMe).Methods(http.MethodPut)
	friends.HandleFunc("/delete", d.Friends.DeleteMe).Methods(http.MethodDelete)
	friends.HandleFunc("/find-user/{email}", d.Friends.FindUser).Methods(http.MethodGet)
	friends.HandleFunc("/{email}", d.Friends.EditAny).Methods(http.MethodPut)

	positions := api.PathPrefix("/positions").Subrouter()
	positions.Use(d.Gate.Require)
	positions.HandleFunc("", d.Positions.Upsert).Methods(http.MethodPut)
	positions.HandleFunc("/me", d.Positions.Me).Methods(http.MethodGet)
	positions.HandleFunc("/nearby", d.Positions.Nearby).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	api.MethodNotAllowedHandler = http.HandlerFunc(handlers.NotFound)
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)

	var h http.Handler = r
	h = middleware.CORSMiddleware(d.CORSOrigins)(h)
	h = middleware.RequestLogger(d.Log)(h)
	return h
}
