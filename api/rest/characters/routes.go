package characters

import (
	"context"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/talespin/characters"
	"github.com/gin-gonic/gin"
)

// satisfied by *characters.Repository
type CharacterRepository interface {
	List(ctx context.Context, f characters.ListFilter) ([]characters.Character, error)
	Get(ctx context.Context, id string) (*characters.Character, error)
	Create(ctx context.Context, userID string, req characters.CreateCharacterRequest) (*characters.Character, error)
	Update(ctx context.Context, id string, req characters.UpdateCharacterRequest) (*characters.Character, error)
	Delete(ctx context.Context, id string) error
	Similar(ctx context.Context, id string, limit int) ([]characters.SimilarCharacter, error)
}

// schedules a character for (re-)embedding, satisfied by *indexer.Indexer
type EmbeddingIndexer interface {
	Enqueue(ctx context.Context, characterID string) error
}

func RegisterRoutes(router *gin.RouterGroup, characterRepo CharacterRepository, idx EmbeddingIndexer) {
	// reads allow anonymous access; private characters are only shown to their owner
	router.GET("/characters", auth.OptionalAuthMiddleware(), ListCharactersHandler(characterRepo))
	router.GET("/characters/:id", auth.OptionalAuthMiddleware(), GetCharacterHandler(characterRepo))
	router.GET("/characters/:id/similar", SimilarCharactersHandler(characterRepo))

	group := router.Group("/characters")
	group.Use(auth.AuthMiddleware())
	{
		group.POST("", CreateCharacterHandler(characterRepo, idx))
		group.PUT("/:id", UpdateCharacterHandler(characterRepo, idx))
		group.DELETE("/:id", DeleteCharacterHandler(characterRepo))
	}
}
