package social

import (
	"context"
	stderrors "errors"
	"net/http"

	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/errors"
	"codeberg.org/talespin/server/talespin/social"
	"github.com/gin-gonic/gin"
)

// ToggleFollowHandler godoc
// @Summary Follow or unfollow a user
// @Tags social
// @Produce json
// @Param id path string true "User to follow"
// @Success 200 {object} social.FollowResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/social/users/{id}/follow [post]
// @Security BearerAuth
func ToggleFollowHandler(repo SocialRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		result, err := repo.ToggleFollow(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, social.ErrSelfFollow) {
				errors.BadRequest(c, "cannot follow yourself", nil)
				return
			}

			errors.InternalError(c, "failed to toggle follow", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// FollowersHandler godoc
// @Summary List followers
// @Tags social
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Max results (default 20, max 100)"
// @Param offset query int false "Pagination offset"
// @Success 200 {object} ProfilesResponse
// @Router /api/v1/social/users/{id}/followers [get]
func FollowersHandler(repo SocialRepository) gin.HandlerFunc {
	return listHandler(repo.Followers, "failed to list followers")
}

// FollowingHandler godoc
// @Summary List followed users
// @Tags social
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Max results (default 20, max 100)"
// @Param offset query int false "Pagination offset"
// @Success 200 {object} ProfilesResponse
// @Router /api/v1/social/users/{id}/following [get]
func FollowingHandler(repo SocialRepository) gin.HandlerFunc {
	return listHandler(repo.Following, "failed to list following")
}

type listFunc func(ctx context.Context, userID string, limit, offset int) ([]social.Profile, error)

func listHandler(list listFunc, failure string) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := pagination.FromQuery(c)

		profiles, err := list(c.Request.Context(), c.Param("id"), params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, failure, err)
			return
		}

		c.JSON(http.StatusOK, ProfilesResponse{
			Users:      profiles,
			Pagination: pagination.NewMeta(params, len(profiles)),
		})
	}
}
