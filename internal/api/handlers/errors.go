package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/services"
)

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as a plain 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrNotAnAdmin) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var se *db.StoreError
	if errors.As(err, &se) {
		switch se.Kind {
		case db.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": se.Msg})
		case db.KindPermissionDenied:
			c.JSON(http.StatusForbidden, gin.H{"error": se.Msg})
		case db.KindInvalidArgument:
			c.JSON(http.StatusBadRequest, gin.H{"error": se.Msg})
		case db.KindAlreadyExists:
			c.JSON(http.StatusConflict, gin.H{"error": se.Msg})
		default:
			log.Printf("Internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Printf("Unclassified error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
