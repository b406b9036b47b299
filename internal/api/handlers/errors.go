package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-project/portfolio-server/internal/database/queries"
	"github.com/portfolio-project/portfolio-server/internal/upload"
)

// respondError maps component errors to HTTP responses. Backend failures
// are logged with detail but surfaced as a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queries.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, queries.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, queries.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, upload.ErrRejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
