package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds pagination parameters from request
type Params struct {
	Limit  int
	Offset int
}

// Meta holds pagination metadata for response
type Meta struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// NewMeta creates pagination metadata from params and the size of the returned page
func NewMeta(params Params, count int) Meta {
	return Meta{
		Limit:   params.Limit,
		Offset:  params.Offset,
		Count:   count,
		HasMore: count == params.Limit,
	}
}

// DefaultParams returns pagination params with defaults applied
// defaultLimit: default items per page, maxLimit: maximum allowed limit
func DefaultParams(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{
		Limit:  limit,
		Offset: offset,
	}
}

// reads ?limit= and ?offset=, ignoring values that are not integers
func FromQuery(c *gin.Context) Params {
	limit, _ := strconv.Atoi(c.Query("limit"))   //nolint:errcheck // bad input falls back to default
	offset, _ := strconv.Atoi(c.Query("offset")) //nolint:errcheck // bad input falls back to zero

	return DefaultParams(limit, offset, DefaultLimit, MaxLimit)
}
