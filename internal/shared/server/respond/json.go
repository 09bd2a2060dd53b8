package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 success envelope: payload keys are merged next to "success": true.
func OK(c *gin.Context, payload gin.H) {
	Success(c, http.StatusOK, payload)
}

// Success writes the success envelope with the given status.
func Success(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		if k == "success" {
			continue
		}
		body[k] = v
	}
	JSON(c, status, body)
}
