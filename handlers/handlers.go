package handlers

import (
	"strconv"

	"crm-server/database"

	"github.com/gin-gonic/gin"
)

// DB is the shared database handle used by all handlers.
var DB *database.DB

// InitializeHandlers wires the database connection into the handlers package.
func InitializeHandlers(db *database.DB) {
	DB = db
}

// parsePageParams reads page/limit from the query string with the
// defaults and bounds the API documents (page >= 1, 1 <= limit <= 100).
func parsePageParams(c *gin.Context) (page, limit int) {
	page = intQuery(c, "page", 1)
	limit = intQuery(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// paginationEnvelope builds the pagination block every list endpoint returns.
func paginationEnvelope(page, limit, total int) gin.H {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return gin.H{
		"currentPage":  page,
		"totalPages":   totalPages,
		"totalItems":   total,
		"itemsPerPage": limit,
		"hasNextPage":  page < totalPages,
		"hasPrevPage":  page > 1,
	}
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	value, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

// orgID returns the tenant id the auth middleware stored on the request.
func orgID(c *gin.Context) int64 {
	v, _ := c.Get("org_id")
	id, _ := v.(int64)
	return id
}

// currentUserID returns the authenticated user's id.
func currentUserID(c *gin.Context) int64 {
	v, _ := c.Get("user_id")
	id, _ := v.(int64)
	return id
}
