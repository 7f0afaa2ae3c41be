package users

import (
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/talespin/users"
)

type UserResponse struct {
	User *users.User `json:"user"`
}

// daily AI allowance as seen by the user
type UsageResponse struct {
	Tier string `json:"tier"` // "free" or "premium"
	quota.Snapshot
}
