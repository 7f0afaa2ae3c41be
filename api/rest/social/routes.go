package social

import (
	"context"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/talespin/social"
	"github.com/gin-gonic/gin"
)

// satisfied by *social.Repository
type SocialRepository interface {
	ToggleFollow(ctx context.Context, userID, targetID string) (*social.FollowResult, error)
	Followers(ctx context.Context, userID string, limit, offset int) ([]social.Profile, error)
	Following(ctx context.Context, userID string, limit, offset int) ([]social.Profile, error)
}

func RegisterRoutes(router *gin.RouterGroup, repo SocialRepository) {
	group := router.Group("/social/users/:id")
	{
		group.POST("/follow", auth.AuthMiddleware(), ToggleFollowHandler(repo))
		group.GET("/followers", FollowersHandler(repo))
		group.GET("/following", FollowingHandler(repo))
	}
}
