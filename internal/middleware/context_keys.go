package middleware

import "github.com/gin-gonic/gin"

// callerIDKey holds the authenticated caller's identity (the API token ID).
const callerIDKey = contextKey("callerID")

// callerRoleKey holds the authenticated caller's role.
const callerRoleKey = contextKey("callerRole")

// GetCallerIDFromContext retrieves the authenticated caller ID from the Gin
// context, checking the request context as well.
func GetCallerIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(callerIDKey)); exists {
		if id, ok := v.(string); ok {
			return id, true
		}
		return "", false
	}
	if v := c.Request.Context().Value(callerIDKey); v != nil {
		return v.(string), true
	}
	return "", false
}

// GetCallerRoleFromContext retrieves the authenticated caller's role.
func GetCallerRoleFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(callerRoleKey)); exists {
		if role, ok := v.(string); ok {
			return role, true
		}
		return "", false
	}
	if v := c.Request.Context().Value(callerRoleKey); v != nil {
		return v.(string), true
	}
	return "", false
}
