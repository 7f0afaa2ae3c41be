package users

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/talespin/server/internal/errors"
	"codeberg.org/talespin/server/talespin/users"
	"github.com/gin-gonic/gin"
)

// GetProfile godoc
// @Summary Get profile
// @Description Returns the authenticated user's profile, premium flag and AI usage counter
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/users/me [get]
// @Security BearerAuth
func GetProfile(userRepo UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			respondUserError(c, err, "failed to load user")
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Update the authenticated user's name and/or avatar
// @Tags users
// @Accept json
// @Produce json
// @Param request body users.UpdateProfileRequest true "Profile update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/users/me [put]
// @Security BearerAuth
func UpdateProfile(userRepo UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		var req users.UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if req.Name == nil && req.AvatarURL == nil {
			errors.BadRequest(c, "nothing to update", nil)
			return
		}

		user, err := userRepo.UpdateProfile(c.Request.Context(), userID, req)
		if err != nil {
			respondUserError(c, err, "failed to update profile")
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// GetUsage godoc
// @Summary Get AI usage
// @Description Returns how many AI conversations the user has left in the current window
// @Tags users
// @Produce json
// @Success 200 {object} UsageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/users/usage [get]
// @Security BearerAuth
func GetUsage(usage UsageReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		snapshot, err := usage.Usage(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to fetch usage data", err)
			return
		}

		tier := "free"
		if snapshot.IsPremium {
			tier = "premium"
		}

		c.JSON(http.StatusOK, UsageResponse{Tier: tier, Snapshot: snapshot})
	}
}

func respondUserError(c *gin.Context, err error, message string) {
	if stderrors.Is(err, users.ErrUserNotFound) {
		errors.NotFound(c, "user")
		return
	}

	errors.InternalError(c, message, err)
}
