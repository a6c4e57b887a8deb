package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitboard/internal/access"
)

// parseIDParam parses a numeric path parameter, responding 400 itself when
// the value is not a valid ID.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// respondAccessError maps access evaluation failures onto HTTP statuses.
// Missing membership and insufficient role both read as 403 so the response
// does not leak which projects exist.
func respondAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrNotAMember),
		errors.Is(err, access.ErrInsufficientRole):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, access.ErrDuplicateMembership),
		errors.Is(err, access.ErrNoRolesRequired):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
