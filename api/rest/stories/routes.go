package stories

import (
	"context"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/talespin/stories"
	"github.com/gin-gonic/gin"
)

// satisfied by *stories.Repository
type StoryRepository interface {
	List(ctx context.Context, f stories.ListFilter) ([]stories.Story, error)
	Get(ctx context.Context, id string) (*stories.Story, error)
	Create(ctx context.Context, userID string, req stories.CreateStoryRequest) (*stories.Story, error)
	Update(ctx context.Context, id string, req stories.UpdateStoryRequest) (*stories.Story, error)
	Delete(ctx context.Context, id string) error
}

type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

func RegisterRoutes(router *gin.RouterGroup, storyRepo StoryRepository, users PremiumChecker) {
	router.GET("/stories", ListStoriesHandler(storyRepo))
	router.GET("/stories/:id", auth.OptionalAuthMiddleware(), GetStoryHandler(storyRepo))

	group := router.Group("/stories")
	group.Use(auth.AuthMiddleware())
	{
		group.POST("", CreateStoryHandler(storyRepo))
		group.PUT("/:id", UpdateStoryHandler(storyRepo))
		group.DELETE("/:id", DeleteStoryHandler(storyRepo))
		group.GET("/:id/export", ExportStoryHandler(storyRepo, users))
	}
}
