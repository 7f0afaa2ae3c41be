package auth

import (
	"context"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/talespin/users"
	"github.com/gin-gonic/gin"
)

// user lookups needed by the auth endpoints, satisfied by *users.Repository
type UserRepository interface {
	FindOrCreateByProvider(ctx context.Context, provider, providerID, email, name, avatarURL string) (*users.User, error)
	FindByID(ctx context.Context, userID string) (*users.User, error)
}

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, userRepo UserRepository) {
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/:provider", BeginAuthHandler())
		authGroup.GET("/:provider/callback", CallbackHandler(userRepo))
		authGroup.POST("/logout", LogoutHandler())
		authGroup.POST("/refresh", RefreshHandler())
		authGroup.GET("/me", auth.AuthMiddleware(), GetCurrentUserHandler(userRepo))
	}
}
