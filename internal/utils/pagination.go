package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	TotalTasks int64 `json:"totalTasks"`
}

// NewPaginationResponse builds the pagination block for a result set. An empty
// result set reports zero total pages.
func NewPaginationResponse(page, limit int, total int64) PaginationResponse {
	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		TotalTasks: total,
	}
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset := (page - 1) * limit

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: offset,
	}
}

// sortColumns maps API sort keys to task table columns. Anything outside this
// map falls back to the default ordering.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

// SortParams holds a resolved sort column and direction.
type SortParams struct {
	Column string
	Desc   bool
}

// GetSortParams extracts sortBy/sortOrder from the request. The default is
// creation time, newest first.
func GetSortParams(c *gin.Context) SortParams {
	column, ok := sortColumns[c.Query("sortBy")]
	if !ok {
		return SortParams{Column: "created_at", Desc: true}
	}

	return SortParams{
		Column: column,
		Desc:   c.Query("sortOrder") == "desc",
	}
}
