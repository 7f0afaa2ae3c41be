package main

import (
	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/config"
	"codeberg.org/talespin/server/internal/indexer"
	"codeberg.org/talespin/server/internal/llm"
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/internal/ratelimit"
	ws "codeberg.org/talespin/server/internal/websocket"
	"codeberg.org/talespin/server/talespin/characters"
	"codeberg.org/talespin/server/talespin/community"
	"codeberg.org/talespin/server/talespin/conversations"
	"codeberg.org/talespin/server/talespin/social"
	"codeberg.org/talespin/server/talespin/stories"
	"codeberg.org/talespin/server/talespin/users"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	db     *pgxpool.Pool
	redis  *redis.Client
	config *config.Config

	userRepo         *users.Repository
	characterRepo    *characters.Repository
	storyRepo        *stories.Repository
	conversationRepo *conversations.Repository
	communityRepo    *community.Repository
	socialRepo       *social.Repository

	services *Services
	hub      *ws.Hub
	relay    *ws.RedisRelay
	router   *gin.Engine
}

// holds the long-lived services built on top of the repositories
type Services struct {
	LLM     llm.LLM
	Agent   *agent.Agent
	Quota   *quota.Tracker
	Indexer *indexer.Indexer
	Limiter *ratelimit.Limiter
}
