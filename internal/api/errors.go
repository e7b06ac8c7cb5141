package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"laundry-station-backend/internal/apperr"
)

// respondErr maps a typed application error to its HTTP status. Anything
// untyped is an internal error.
func respondErr(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		c.AbortWithStatusJSON(e.HTTPStatus, gin.H{"error": e.Message, "code": e.Code})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// stationID parses the :station_id path param.
func stationID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("station_id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid station ID"})
		return 0, false
	}
	return uint(id), true
}

// intParam parses a numeric path param such as a machine or agent number.
func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return n, true
}
