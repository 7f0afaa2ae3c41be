package social

import (
	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/talespin/social"
)

type ProfilesResponse struct {
	Users      []social.Profile `json:"users"`
	Pagination pagination.Meta  `json:"pagination"`
}
