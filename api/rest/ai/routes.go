package ai

import (
	"context"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/auth"
	"github.com/gin-gonic/gin"
)

// satisfied by *agent.Agent
type Assistant interface {
	Chat(ctx context.Context, userID string, req agent.ChatRequest) (*agent.ChatResponse, error)
	GenerateStory(ctx context.Context, userID string, req agent.StoryRequest) (*agent.StoryResponse, error)
	GenerateImage(ctx context.Context, userID string, req agent.ImageRequest) (*agent.ImageResponse, error)
}

// userLimit is applied after authentication so the limiter can key on the user
func RegisterRoutes(router *gin.RouterGroup, assistant Assistant, userLimit gin.HandlerFunc) {
	group := router.Group("/ai")
	group.Use(auth.AuthMiddleware())

	if userLimit != nil {
		group.Use(userLimit)
	}

	{
		group.POST("/chat", ChatHandler(assistant))
		group.POST("/generate-story", GenerateStoryHandler(assistant))
		group.POST("/generate-image", GenerateImageHandler(assistant))
	}
}
