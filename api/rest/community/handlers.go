package community

import (
	"context"
	stderrors "errors"
	"net/http"

	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/errors"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/metrics"
	"codeberg.org/talespin/server/internal/websocket"
	"codeberg.org/talespin/server/talespin/community"
	"github.com/gin-gonic/gin"
)

// FeedHandler godoc
// @Summary Community feed
// @Description Newest posts first; with a token each post carries whether the viewer liked it
// @Tags community
// @Produce json
// @Param limit query int false "Max results (default 20, max 100)"
// @Param offset query int false "Pagination offset"
// @Success 200 {object} FeedResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/community/feed [get]
func FeedHandler(repo CommunityRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, _ := auth.GetUserID(c)
		params := pagination.FromQuery(c)

		posts, err := repo.Feed(c.Request.Context(), viewerID, params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to load feed", err)
			return
		}

		c.JSON(http.StatusOK, FeedResponse{
			Posts:      posts,
			Pagination: pagination.NewMeta(params, len(posts)),
		})
	}
}

// CreatePostHandler godoc
// @Summary Share to the feed
// @Tags community
// @Accept json
// @Produce json
// @Param request body community.CreatePostRequest true "Post"
// @Success 201 {object} community.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/community/posts [post]
// @Security BearerAuth
func CreatePostHandler(repo CommunityRepository, events EventPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req community.CreatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		post, err := repo.CreatePost(c.Request.Context(), userID, req)
		if err != nil {
			errors.InternalError(c, "failed to create post", err)
			return
		}

		payload := websocket.PostCreatedPayload{
			PostID:      post.ID,
			UserID:      post.UserID,
			ContentType: post.ContentType,
			ContentID:   post.ContentID,
		}

		if post.Caption != nil {
			payload.Caption = *post.Caption
		}

		publish(c.Request.Context(), events, websocket.TypePostCreated, payload)

		c.JSON(http.StatusCreated, post)
	}
}

// ToggleLikeHandler godoc
// @Summary Toggle like
// @Description Likes the post if the caller has not liked it yet, otherwise removes the like. Returns the authoritative state.
// @Tags community
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} community.LikeResult
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/community/posts/{id}/like [post]
// @Security BearerAuth
func ToggleLikeHandler(repo CommunityRepository, events EventPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		postID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		result, err := repo.ToggleLike(c.Request.Context(), postID, userID)
		if err != nil {
			metrics.RecordLikeToggle("error")
			respondPostError(c, err, "failed to toggle like")
			return
		}

		if result.Liked {
			metrics.RecordLikeToggle("liked")
		} else {
			metrics.RecordLikeToggle("unliked")
		}

		publish(c.Request.Context(), events, websocket.TypeLikeUpdated, websocket.LikeUpdatedPayload{
			PostID:     result.PostID,
			UserID:     userID,
			Liked:      result.Liked,
			LikesCount: result.LikesCount,
		})

		c.JSON(http.StatusOK, result)
	}
}

// ListCommentsHandler godoc
// @Summary List comments
// @Tags community
// @Produce json
// @Param id path string true "Post ID"
// @Param limit query int false "Max results (default 20, max 100)"
// @Param offset query int false "Pagination offset"
// @Success 200 {object} CommentsResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/community/posts/{id}/comments [get]
func ListCommentsHandler(repo CommunityRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		params := pagination.FromQuery(c)

		comments, err := repo.ListComments(c.Request.Context(), postID, params.Limit, params.Offset)
		if err != nil {
			respondPostError(c, err, "failed to list comments")
			return
		}

		c.JSON(http.StatusOK, CommentsResponse{
			Comments:   comments,
			Pagination: pagination.NewMeta(params, len(comments)),
		})
	}
}

// CreateCommentHandler godoc
// @Summary Comment on a post
// @Tags community
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body community.CreateCommentRequest true "Comment"
// @Success 201 {object} community.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/community/posts/{id}/comments [post]
// @Security BearerAuth
func CreateCommentHandler(repo CommunityRepository, events EventPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		postID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		var req community.CreateCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		comment, err := repo.CreateComment(c.Request.Context(), postID, userID, req)
		if err != nil {
			respondPostError(c, err, "failed to create comment")
			return
		}

		publish(c.Request.Context(), events, websocket.TypeCommentAdded, websocket.CommentAddedPayload{
			PostID:    comment.PostID,
			CommentID: comment.ID,
			UserID:    comment.UserID,
			Content:   comment.Content,
		})

		c.JSON(http.StatusCreated, comment)
	}
}

// the write has already committed; a lost event only delays other viewers
func publish(ctx context.Context, events EventPublisher, msgType string, payload any) {
	if events == nil {
		return
	}

	if err := events.Publish(ctx, msgType, payload); err != nil {
		logger.FromContext(ctx).Warn("failed to publish feed event",
			"type", msgType,
			"error", err,
		)
	}
}

func respondPostError(c *gin.Context, err error, message string) {
	if stderrors.Is(err, community.ErrPostNotFound) {
		errors.NotFound(c, "post")
		return
	}

	errors.InternalError(c, message, err)
}
