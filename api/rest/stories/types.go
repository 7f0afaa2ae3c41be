package stories

import (
	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/talespin/stories"
)

type StoriesListResponse struct {
	Stories    []stories.Story `json:"stories"`
	Pagination pagination.Meta `json:"pagination"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
