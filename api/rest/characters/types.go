package characters

import (
	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/talespin/characters"
)

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 20
)

type CharactersListResponse struct {
	Characters []characters.Character `json:"characters"`
	Pagination pagination.Meta        `json:"pagination"`
}

type SimilarResponse struct {
	Characters []characters.SimilarCharacter `json:"characters"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
