package conversations

import (
	"context"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/talespin/characters"
	"codeberg.org/talespin/server/talespin/conversations"
	"github.com/gin-gonic/gin"
)

// satisfied by *conversations.Repository
type ConversationRepository interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]conversations.Conversation, error)
	Get(ctx context.Context, id string) (*conversations.Conversation, error)
	Create(ctx context.Context, userID string, req conversations.CreateConversationRequest) (*conversations.Conversation, error)
	Delete(ctx context.Context, id string) error
}

type CharacterLookup interface {
	Get(ctx context.Context, id string) (*characters.Character, error)
}

func RegisterRoutes(router *gin.RouterGroup, convRepo ConversationRepository, characterRepo CharacterLookup) {
	group := router.Group("/conversations")
	group.Use(auth.AuthMiddleware())
	{
		group.GET("", ListConversationsHandler(convRepo))
		group.POST("", CreateConversationHandler(convRepo, characterRepo))
		group.GET("/:id", GetConversationHandler(convRepo))
		group.DELETE("/:id", DeleteConversationHandler(convRepo))
	}
}
