package community

import (
	"context"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/talespin/community"
	"github.com/gin-gonic/gin"
)

// satisfied by *community.Repository
type CommunityRepository interface {
	Feed(ctx context.Context, viewerID string, limit, offset int) ([]community.Post, error)
	CreatePost(ctx context.Context, userID string, req community.CreatePostRequest) (*community.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (*community.LikeResult, error)
	ListComments(ctx context.Context, postID string, limit, offset int) ([]community.Comment, error)
	CreateComment(ctx context.Context, postID, userID string, req community.CreateCommentRequest) (*community.Comment, error)
}

// live feed fan-out, satisfied by *websocket.Hub
type EventPublisher interface {
	Publish(ctx context.Context, msgType string, payload any) error
}

func RegisterRoutes(router *gin.RouterGroup, repo CommunityRepository, events EventPublisher) {
	group := router.Group("/community")
	{
		group.GET("/feed", auth.OptionalAuthMiddleware(), FeedHandler(repo))
		group.GET("/posts/:id/comments", ListCommentsHandler(repo))

		group.POST("/posts", auth.AuthMiddleware(), CreatePostHandler(repo, events))
		group.POST("/posts/:id/like", auth.AuthMiddleware(), ToggleLikeHandler(repo, events))
		group.POST("/posts/:id/comments", auth.AuthMiddleware(), CreateCommentHandler(repo, events))
	}
}
