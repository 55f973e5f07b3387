package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"friends-server/config"
	"friends-server/graph"
	"friends-server/handlers"
	"friends-server/middleware"
	"friends-server/models"
	"friends-server/routes"
	"friends-server/services"
	"friends-server/store/memory"
	"friends-server/store/mongostore"
	"friends-server/store/redisgeo"
	"friends-server/utils/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

type stores struct {
	friends   services.FriendRepository
	positions services.PositionIndex
	closers   []func(context.Context) error
}

func (s *stores) close(ctx context.Context, log logrus.FieldLogger) {
	for _, c := range s.closers {
		if err := c(ctx); err != nil {
			logger.LogError(log, "failed to close store", err, nil)
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*stores, error) {
	s := &stores{}

	var (
		mem    *memory.Store
		mongoP *mongostore.PositionIndex
	)
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI, log)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(ctx context.Context) error { return client.Disconnect(ctx) })
		friends, positions, err := setupMongo(ctx, client.Database(cfg.Mongo.Database))
		if err != nil {
			s.close(ctx, log)
			return nil, err
		}
		s.friends, mongoP = friends, positions
	case config.DriverMemory:
		var err error
		mem, err = memory.New()
		if err != nil {
			return nil, err
		}
		s.friends = mem.Friends()
		log.Warn("using the in-memory store, data is lost on restart")
	}

	switch cfg.PositionIndex {
	case config.DriverMongo:
		s.positions = mongoP
	case config.DriverRedis:
		client, err := redisgeo.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			s.close(ctx, log)
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		s.positions = redisgeo.NewPositionIndex(client)
	case config.DriverMemory:
		if mem == nil {
			var err error
			if mem, err = memory.New(); err != nil {
				s.close(ctx, log)
				return nil, err
			}
		}
		s.positions = mem.Positions()
	}
	return s, nil
}

func setupMongo(ctx context.Context, db *mongo.Database) (*mongostore.FriendRepository, *mongostore.PositionIndex, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return mongostore.Setup(ctx, db)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.AppName, cfg.Env, cfg.LogLevel, cfg.LogFormat)
	base := log.WithFields(logrus.Fields{"app": cfg.AppName, "env": cfg.Env})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, base)
	if err != nil {
		base.WithError(err).Fatal("failed to open stores")
	}

	friendService := services.NewFriendService(st.friends, services.NewBcryptHasher(cfg.Auth.BcryptCost), base.WithField("component", "friends"))
	positionService := services.NewPositionService(st.positions, st.friends, base.WithField("component", "positions"))

	if cfg.Admin.Email != "" {
		created, err := friendService.EnsureAdmin(ctx, models.RegisterInput{
			FirstName: cfg.Admin.FirstName,
			LastName:  cfg.Admin.LastName,
			Email:     cfg.Admin.Email,
			Password:  cfg.Admin.Password,
		})
		if err != nil {
			base.WithError(err).Fatal("failed to bootstrap admin account")
		}
		if created {
			base.WithField("email", cfg.Admin.Email).Info("admin account created")
		}
	}

	var (
		tokens      middleware.TokenParser
		authHandler *handlers.AuthHandler
	)
	if cfg.TokensEnabled() {
		authService := services.NewAuthService(friendService, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		tokens = authService
		authHandler = handlers.NewAuthHandler(authService)
	}
	if cfg.Auth.Skip {
		base.Warn("SKIP_AUTHENTICATION is set, every request runs as admin")
	}
	gate := middleware.NewGate(friendService, tokens, middleware.GateOptions{Realm: cfg.Auth.Realm, Skip: cfg.Auth.Skip})

	resolver := graph.NewResolver(friendService, positionService, graph.NewFriendsProxy(cfg.APIBaseURL, nil), base.WithField("component", "graphql"))
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		base.WithError(err).Fatal("failed to build graphql schema")
	}

	handler := routes.New(routes.Deps{
		Friends:     handlers.NewFriendHandler(friendService),
		Positions:   handlers.NewPositionHandler(positionService),
		GraphQL:     handlers.NewGraphQLHandler(schema, gate),
		Auth:        authHandler,
		Gate:        gate,
		CORSOrigins: cfg.CORSOrigins,
		Log:         base,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		base.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			base.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	base.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.LogError(base, "graceful shutdown failed", err, nil)
	}
	st.close(shutdownCtx, base)
	base.Info("server stopped")
}
