package handler

import (
	"net/http"
	"strconv"

	apperrors "event-registry/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindUri(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindUri(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// eventIDParam parses the :id path segment. Anything that is not an unsigned
// integer is an invalid id, like id 0.
func eventIDParam(c *gin.Context) (uint64, error) {
	return parseEventID(c.Param("id"))
}

func parseEventID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, apperrors.ErrInvalidEventID
	}
	return id, nil
}
