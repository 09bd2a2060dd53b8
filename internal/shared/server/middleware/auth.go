package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Headers the commerce host forwards after it has authenticated the member.
const (
	HeaderWhopUserID = "X-Whop-User-Id"
	HeaderWhopEmail  = "X-Whop-User-Email"
	HeaderWhopName   = "X-Whop-Username"
)

const (
	whopUserIDKey = "whopUserId"
	userEmailKey  = "userEmail"
	userNameKey   = "userName"
)

// Identity copies the host-supplied identity headers into the gin context.
// It never rejects: endpoints that need an identity check for it themselves.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if id := strings.TrimSpace(c.GetHeader(HeaderWhopUserID)); id != "" {
			c.Set(whopUserIDKey, id)
		}
		if email := strings.TrimSpace(c.GetHeader(HeaderWhopEmail)); email != "" {
			c.Set(userEmailKey, email)
		}
		if name := strings.TrimSpace(c.GetHeader(HeaderWhopName)); name != "" {
			c.Set(userNameKey, name)
		}
		c.Next()
	}
}

// WhopUserIDFromContext fetches the external identity set by Identity.
func WhopUserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, whopUserIDKey)
}

// UserEmailFromContext fetches the member email set by Identity.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the member username set by Identity.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
