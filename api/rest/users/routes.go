package users

import (
	"context"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/talespin/users"
	"github.com/gin-gonic/gin"
)

type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*users.User, error)
	UpdateProfile(ctx context.Context, userID string, req users.UpdateProfileRequest) (*users.User, error)
}

// read-only view of the AI allowance, satisfied by *quota.Tracker
type UsageReader interface {
	Usage(ctx context.Context, userID string) (quota.Snapshot, error)
}

func RegisterRoutes(rg *gin.RouterGroup, userRepo UserRepository, usage UsageReader) {
	group := rg.Group("/users")
	group.Use(auth.AuthMiddleware()) // all user routes require authentication

	group.GET("/me", GetProfile(userRepo))
	group.PUT("/me", UpdateProfile(userRepo))
	group.GET("/usage", GetUsage(usage))
}
