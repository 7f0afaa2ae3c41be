package characters

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/errors"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/talespin/characters"
	"github.com/gin-gonic/gin"
)

// ListCharactersHandler godoc
// @Summary List characters
// @Description List public characters, or the caller's own with mine=true
// @Tags characters
// @Produce json
// @Param public query bool false "Filter by visibility (only with mine=true)"
// @Param mine query bool false "Only the authenticated user's characters"
// @Param style query string false "Filter by style"
// @Param limit query int false "Max results (default 20, max 100)"
// @Param offset query int false "Pagination offset"
// @Success 200 {object} CharactersListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/characters [get]
func ListCharactersHandler(characterRepo CharacterRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		public, err := boolQuery(c, "public")
		if err != nil {
			errors.BadRequest(c, "public must be true or false", err)
			return
		}

		mine, err := boolQuery(c, "mine")
		if err != nil {
			errors.BadRequest(c, "mine must be true or false", err)
			return
		}

		params := pagination.FromQuery(c)

		filter := characters.ListFilter{
			Style:  c.Query("style"),
			Limit:  params.Limit,
			Offset: params.Offset,
		}

		if mine != nil && *mine {
			userID, ok := auth.GetUserID(c)
			if !ok {
				errors.Unauthorized(c, "")
				return
			}

			filter.UserID = userID
			filter.Public = public
		} else {
			visible := true
			filter.Public = &visible
		}

		list, err := characterRepo.List(c.Request.Context(), filter)
		if err != nil {
			errors.InternalError(c, "failed to list characters", err)
			return
		}

		c.JSON(http.StatusOK, CharactersListResponse{
			Characters: list,
			Pagination: pagination.NewMeta(params, len(list)),
		})
	}
}

// GetCharacterHandler godoc
// @Summary Get character
// @Tags characters
// @Produce json
// @Param id path string true "Character ID"
// @Success 200 {object} characters.Character
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/characters/{id} [get]
func GetCharacterHandler(characterRepo CharacterRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		character, err := characterRepo.Get(c.Request.Context(), id)
		if err != nil {
			respondCharacterError(c, err, "failed to get character")
			return
		}

		userID, _ := auth.GetUserID(c)
		if !character.IsPublic && character.UserID != userID {
			errors.NotFound(c, "character")
			return
		}

		c.JSON(http.StatusOK, character)
	}
}

// SimilarCharactersHandler godoc
// @Summary Similar characters
// @Description Public characters closest to the given one by embedding distance
// @Tags characters
// @Produce json
// @Param id path string true "Character ID"
// @Param limit query int false "Max results (default 5, max 20)"
// @Success 200 {object} SimilarResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/characters/{id}/similar [get]
func SimilarCharactersHandler(characterRepo CharacterRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		limit, _ := strconv.Atoi(c.Query("limit")) //nolint:errcheck // bad input falls back to default
		params := pagination.DefaultParams(limit, 0, defaultSimilarLimit, maxSimilarLimit)

		results, err := characterRepo.Similar(c.Request.Context(), id, params.Limit)
		if err != nil {
			errors.InternalError(c, "failed to find similar characters", err)
			return
		}

		c.JSON(http.StatusOK, SimilarResponse{Characters: results})
	}
}

// CreateCharacterHandler godoc
// @Summary Create character
// @Tags characters
// @Accept json
// @Produce json
// @Param request body characters.CreateCharacterRequest true "Character"
// @Success 201 {object} characters.Character
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/characters [post]
// @Security BearerAuth
func CreateCharacterHandler(characterRepo CharacterRepository, idx EmbeddingIndexer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req characters.CreateCharacterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		character, err := characterRepo.Create(c.Request.Context(), userID, req)
		if err != nil {
			errors.InternalError(c, "failed to create character", err)
			return
		}

		scheduleEmbedding(c.Request.Context(), idx, character.ID)

		c.JSON(http.StatusCreated, character)
	}
}

// UpdateCharacterHandler godoc
// @Summary Update character
// @Description Partial update; only the owner may update
// @Tags characters
// @Accept json
// @Produce json
// @Param id path string true "Character ID"
// @Param request body characters.UpdateCharacterRequest true "Fields to change"
// @Success 200 {object} characters.Character
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/characters/{id} [put]
// @Security BearerAuth
func UpdateCharacterHandler(characterRepo CharacterRepository, idx EmbeddingIndexer) gin.HandlerFunc {
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

		var req characters.UpdateCharacterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if !requireOwner(c, characterRepo, id, userID) {
			return
		}

		character, err := characterRepo.Update(c.Request.Context(), id, req)
		if err != nil {
			respondCharacterError(c, err, "failed to update character")
			return
		}

		if req.Name != nil || req.Description != nil || req.Personality != nil || req.Style != nil {
			scheduleEmbedding(c.Request.Context(), idx, character.ID)
		}

		c.JSON(http.StatusOK, character)
	}
}

// DeleteCharacterHandler godoc
// @Summary Delete character
// @Tags characters
// @Produce json
// @Param id path string true "Character ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/characters/{id} [delete]
// @Security BearerAuth
func DeleteCharacterHandler(characterRepo CharacterRepository) gin.HandlerFunc {
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

		if !requireOwner(c, characterRepo, id, userID) {
			return
		}

		if err := characterRepo.Delete(c.Request.Context(), id); err != nil {
			respondCharacterError(c, err, "failed to delete character")
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "character deleted"})
	}
}

// writes the error response itself and returns false when the caller may not modify id
func requireOwner(c *gin.Context, characterRepo CharacterRepository, id, userID string) bool {
	character, err := characterRepo.Get(c.Request.Context(), id)
	if err != nil {
		respondCharacterError(c, err, "failed to get character")
		return false
	}

	if character.UserID != userID {
		errors.Forbidden(c, "you do not own this character")
		return false
	}

	return true
}

// the backfill job picks up anything missed here
func scheduleEmbedding(ctx context.Context, idx EmbeddingIndexer, id string) {
	if idx == nil {
		return
	}

	if err := idx.Enqueue(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("failed to queue character embedding",
			"character_id", id,
			"error", err,
		)
	}
}

func respondCharacterError(c *gin.Context, err error, message string) {
	if stderrors.Is(err, characters.ErrCharacterNotFound) {
		errors.NotFound(c, "character")
		return
	}

	errors.InternalError(c, message, err)
}

// parses an optional boolean query parameter
func boolQuery(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}

	return &v, nil
}
