package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kfujiw/raci-task-tracker/internal/constants"
)

// PaginationParams carries the page window extracted from a list request.
type PaginationParams struct {
	Page     int
	PageSize int
}

// GetPaginationParams reads the page/limit query parameters and clamps them
// to the configured bounds. The result feeds database.Paginate.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{Page: page, PageSize: limit}
}
