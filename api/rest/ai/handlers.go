package ai

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// ChatHandler godoc
// @Summary Chat with a character
// @Description Sends a message to a character. Free users get a limited number of chats per rolling window; a failed generation does not use one up.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body agent.ChatRequest true "Chat request"
// @Success 200 {object} agent.ChatResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.QuotaResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/ai/chat [post]
// @Security BearerAuth
func ChatHandler(assistant Assistant) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req agent.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		resp, err := assistant.Chat(c.Request.Context(), userID, req)
		if err != nil {
			respondAgentError(c, err, "failed to generate reply")
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// GenerateStoryHandler godoc
// @Summary Generate a story
// @Tags ai
// @Accept json
// @Produce json
// @Param request body agent.StoryRequest true "Story request"
// @Success 200 {object} agent.StoryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/ai/generate-story [post]
// @Security BearerAuth
func GenerateStoryHandler(assistant Assistant) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req agent.StoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		resp, err := assistant.GenerateStory(c.Request.Context(), userID, req)
		if err != nil {
			respondAgentError(c, err, "failed to generate story")
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// GenerateImageHandler godoc
// @Summary Generate an image
// @Description Premium users only
// @Tags ai
// @Accept json
// @Produce json
// @Param request body agent.ImageRequest true "Image request"
// @Success 200 {object} agent.ImageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/ai/generate-image [post]
// @Security BearerAuth
func GenerateImageHandler(assistant Assistant) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req agent.ImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		resp, err := assistant.GenerateImage(c.Request.Context(), userID, req)
		if err != nil {
			respondAgentError(c, err, "failed to generate image")
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func respondAgentError(c *gin.Context, err error, message string) {
	var gateway *agent.GatewayError

	switch {
	case stderrors.Is(err, agent.ErrNotOwner):
		errors.Forbidden(c, "you do not own this conversation")
	case stderrors.As(err, &gateway):
		errors.UpstreamFailure(c, "", gateway.Err)
	default:
		errors.Respond(c, message, err)
	}
}
