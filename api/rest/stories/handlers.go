package stories

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/errors"
	"codeberg.org/talespin/server/talespin/stories"
	"github.com/gin-gonic/gin"
)

// ListStoriesHandler godoc
// @Summary List stories
// @Description List non-private stories, newest first
// @Tags stories
// @Produce json
// @Param public query bool false "Filter by public flag"
// @Param genre query string false "Filter by genre"
// @Param limit query int false "Max results (default 20, max 100)"
// @Param offset query int false "Pagination offset"
// @Success 200 {object} StoriesListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/stories [get]
func ListStoriesHandler(storyRepo StoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var public *bool

		if raw := c.Query("public"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				errors.BadRequest(c, "public must be true or false", err)
				return
			}

			public = &v
		}

		params := pagination.FromQuery(c)

		list, err := storyRepo.List(c.Request.Context(), stories.ListFilter{
			Public: public,
			Genre:  c.Query("genre"),
			Limit:  params.Limit,
			Offset: params.Offset,
		})
		if err != nil {
			errors.InternalError(c, "failed to list stories", err)
			return
		}

		c.JSON(http.StatusOK, StoriesListResponse{
			Stories:    list,
			Pagination: pagination.NewMeta(params, len(list)),
		})
	}
}

// GetStoryHandler godoc
// @Summary Get story
// @Description Private stories are only returned to their owner
// @Tags stories
// @Produce json
// @Param id path string true "Story ID"
// @Success 200 {object} stories.Story
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/stories/{id} [get]
func GetStoryHandler(storyRepo StoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		story, err := storyRepo.Get(c.Request.Context(), id)
		if err != nil {
			respondStoryError(c, err, "failed to get story")
			return
		}

		userID, _ := auth.GetUserID(c)
		if !story.VisibleTo(userID) {
			errors.NotFound(c, "story")
			return
		}

		c.JSON(http.StatusOK, story)
	}
}

// CreateStoryHandler godoc
// @Summary Create story
// @Tags stories
// @Accept json
// @Produce json
// @Param request body stories.CreateStoryRequest true "Story"
// @Success 201 {object} stories.Story
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/stories [post]
// @Security BearerAuth
func CreateStoryHandler(storyRepo StoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req stories.CreateStoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		story, err := storyRepo.Create(c.Request.Context(), userID, req)
		if err != nil {
			errors.InternalError(c, "failed to create story", err)
			return
		}

		c.JSON(http.StatusCreated, story)
	}
}

// UpdateStoryHandler godoc
// @Summary Update story
// @Tags stories
// @Accept json
// @Produce json
// @Param id path string true "Story ID"
// @Param request body stories.UpdateStoryRequest true "Fields to change"
// @Success 200 {object} stories.Story
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/stories/{id} [put]
// @Security BearerAuth
func UpdateStoryHandler(storyRepo StoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		id, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		var req stories.UpdateStoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if _, ok := ownedStory(c, storyRepo, id, userID); !ok {
			return
		}

		story, err := storyRepo.Update(c.Request.Context(), id, req)
		if err != nil {
			respondStoryError(c, err, "failed to update story")
			return
		}

		c.JSON(http.StatusOK, story)
	}
}

// DeleteStoryHandler godoc
// @Summary Delete story
// @Tags stories
// @Produce json
// @Param id path string true "Story ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/stories/{id} [delete]
// @Security BearerAuth
func DeleteStoryHandler(storyRepo StoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		id, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		if _, ok := ownedStory(c, storyRepo, id, userID); !ok {
			return
		}

		if err := storyRepo.Delete(c.Request.Context(), id); err != nil {
			respondStoryError(c, err, "failed to delete story")
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "story deleted"})
	}
}

// ExportStoryHandler godoc
// @Summary Export story
// @Description Premium users get a PDF download link, free users a plain text rendering
// @Tags stories
// @Produce json
// @Param id path string true "Story ID"
// @Success 200 {object} stories.ExportResult
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/stories/{id}/export [get]
// @Security BearerAuth
func ExportStoryHandler(storyRepo StoryRepository, users PremiumChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		id, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		story, ok := ownedStory(c, storyRepo, id, userID)
		if !ok {
			return
		}

		premium, err := users.IsPremium(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to load user", err)
			return
		}

		c.JSON(http.StatusOK, stories.Export(story, premium))
	}
}

// loads id and checks that userID owns it, writing the error response otherwise
func ownedStory(c *gin.Context, storyRepo StoryRepository, id, userID string) (*stories.Story, bool) {
	story, err := storyRepo.Get(c.Request.Context(), id)
	if err != nil {
		respondStoryError(c, err, "failed to get story")
		return nil, false
	}

	if story.UserID != userID {
		if !story.VisibleTo(userID) {
			errors.NotFound(c, "story")
			return nil, false
		}

		errors.Forbidden(c, "you do not own this story")
		return nil, false
	}

	return story, true
}

func respondStoryError(c *gin.Context, err error, message string) {
	if stderrors.Is(err, stories.ErrStoryNotFound) {
		errors.NotFound(c, "story")
		return
	}

	errors.InternalError(c, message, err)
}
