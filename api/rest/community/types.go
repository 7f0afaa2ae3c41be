package community

import (
	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/talespin/community"
)

type FeedResponse struct {
	Posts      []community.Post `json:"posts"`
	Pagination pagination.Meta  `json:"pagination"`
}

type CommentsResponse struct {
	Comments   []community.Comment `json:"comments"`
	Pagination pagination.Meta     `json:"pagination"`
}
