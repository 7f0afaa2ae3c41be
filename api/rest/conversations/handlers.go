package conversations

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/errors"
	"codeberg.org/talespin/server/talespin/characters"
	"codeberg.org/talespin/server/talespin/conversations"
	"github.com/gin-gonic/gin"
)

// ListConversationsHandler godoc
// @Summary List conversations
// @Description The authenticated user's conversations, most recently updated first
// @Tags conversations
// @Produce json
// @Param limit query int false "Max results (default 20, max 100)"
// @Param offset query int false "Pagination offset"
// @Success 200 {object} ConversationsListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/conversations [get]
// @Security BearerAuth
func ListConversationsHandler(convRepo ConversationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		params := pagination.FromQuery(c)

		list, err := convRepo.ListByUser(c.Request.Context(), userID, params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list conversations", err)
			return
		}

		c.JSON(http.StatusOK, ConversationsListResponse{
			Conversations: list,
			Pagination:    pagination.NewMeta(params, len(list)),
		})
	}
}

// CreateConversationHandler godoc
// @Summary Start conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body conversations.CreateConversationRequest true "Conversation"
// @Success 201 {object} conversations.Conversation
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/conversations [post]
// @Security BearerAuth
func CreateConversationHandler(convRepo ConversationRepository, characterRepo CharacterLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req conversations.CreateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		character, err := characterRepo.Get(c.Request.Context(), req.CharacterID)
		if err != nil {
			if stderrors.Is(err, characters.ErrCharacterNotFound) {
				errors.NotFound(c, "character")
				return
			}

			errors.InternalError(c, "failed to get character", err)
			return
		}

		if !character.IsPublic && character.UserID != userID {
			errors.NotFound(c, "character")
			return
		}

		conv, err := convRepo.Create(c.Request.Context(), userID, req)
		if err != nil {
			errors.InternalError(c, "failed to create conversation", err)
			return
		}

		c.JSON(http.StatusCreated, conv)
	}
}

// GetConversationHandler godoc
// @Summary Get conversation
// @Description Returns the conversation with its full message history
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} conversations.Conversation
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/conversations/{id} [get]
// @Security BearerAuth
func GetConversationHandler(convRepo ConversationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := ownedConversation(c, convRepo)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, conv)
	}
}

// DeleteConversationHandler godoc
// @Summary Delete conversation
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/conversations/{id} [delete]
// @Security BearerAuth
func DeleteConversationHandler(convRepo ConversationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := ownedConversation(c, convRepo)
		if !ok {
			return
		}

		if err := convRepo.Delete(c.Request.Context(), conv.ID); err != nil {
			respondConversationError(c, err, "failed to delete conversation")
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "conversation deleted"})
	}
}

func ownedConversation(c *gin.Context, convRepo ConversationRepository) (*conversations.Conversation, bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return nil, false
	}

	id, ok := errors.ValidatePathUUID(c, "id")
	if !ok {
		return nil, false
	}

	conv, err := convRepo.Get(c.Request.Context(), id)
	if err != nil {
		respondConversationError(c, err, "failed to get conversation")
		return nil, false
	}

	if conv.UserID != userID {
		errors.Forbidden(c, "you do not own this conversation")
		return nil, false
	}

	return conv, true
}

func respondConversationError(c *gin.Context, err error, message string) {
	if stderrors.Is(err, conversations.ErrConversationNotFound) {
		errors.NotFound(c, "conversation")
		return
	}

	errors.InternalError(c, message, err)
}
