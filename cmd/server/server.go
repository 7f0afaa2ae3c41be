package main

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/talespin/server/internal/config"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/storage"
	ws "codeberg.org/talespin/server/internal/websocket"
	"codeberg.org/talespin/server/talespin/characters"
	"codeberg.org/talespin/server/talespin/community"
	"codeberg.org/talespin/server/talespin/conversations"
	"codeberg.org/talespin/server/talespin/social"
	"codeberg.org/talespin/server/talespin/stories"
	"codeberg.org/talespin/server/talespin/users"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/redis/go-redis/v9"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := storage.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	rdb, err := storage.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, err
	}

	if rdb == nil {
		logger.Warn("REDIS_URL not set, rate limits and feed events stay local to this instance")
	}

	userRepo := users.NewRepository(db)
	characterRepo := characters.NewRepository(db)
	conversationRepo := conversations.NewRepository(db)

	services, err := InitializeServices(cfg, db, rdb, userRepo, characterRepo, conversationRepo)
	if err != nil {
		closeRedis(rdb)
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	hub := ws.NewHub()

	var relay *ws.RedisRelay
	if rdb != nil {
		relay = ws.NewRedisRelay(rdb, ws.DefaultRelayChannel)
		hub.SetRelay(relay)
	}

	// unknown JSON fields are rejected instead of silently dropped
	binding.EnableDecoderDisallowUnknownFields = true

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	server := &Server{
		db:               db,
		redis:            rdb,
		config:           cfg,
		userRepo:         userRepo,
		characterRepo:    characterRepo,
		storyRepo:        stories.NewRepository(db),
		conversationRepo: conversationRepo,
		communityRepo:    community.NewRepository(db),
		socialRepo:       social.NewRepository(db),
		services:         services,
		hub:              hub,
		relay:            relay,
		router:           router,
	}

	RegisterRoutes(router, server)

	return server, nil
}

// starts background work: hub, relay subscription, embedding indexer
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run()

	if s.relay != nil {
		go func() {
			if err := s.relay.Run(ctx, s.hub); err != nil {
				logger.ErrorErr(err, "feed relay stopped")
			}
		}()
	}

	s.services.Indexer.Start()

	// embed anything created while the indexer was down
	go func() {
		n, err := s.services.Indexer.Backfill(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorErr(err, "embedding backfill failed", "embedded", n)
			return
		}

		if err == nil && n > 0 {
			logger.Info("embedding backfill complete", "embedded", n)
		}
	}()
}

// stops background work and releases connections
func (s *Server) Close() {
	s.hub.Shutdown()
	s.services.Indexer.Stop()

	closeRedis(s.redis)
	s.db.Close()
}

func closeRedis(rdb *redis.Client) {
	if rdb == nil {
		return
	}

	if err := rdb.Close(); err != nil {
		logger.ErrorErr(err, "failed to close redis")
	}
}
