package middleware

import (
	"strings"

	"daansetu/config"
	"daansetu/internal/auth"

	"github.com/gin-gonic/gin"
)

// OptionalAuth parses a Bearer token when one is sent and sets the donor
// identity in context. Missing or invalid tokens are not an error: anonymous
// visitors donate as guests with the identity typed on the form.
func OptionalAuth(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			c.Next()
			return
		}
		c.Set("user_id", claims.UserID)
		c.Set("donor_name", claims.Name)
		c.Set("donor_email", claims.Email)
		c.Next()
	}
}

// DonorIdentity returns the authenticated donor's name and email, if any.
func DonorIdentity(c *gin.Context) (name, email string, ok bool) {
	n, hasName := c.Get("donor_name")
	e, hasEmail := c.Get("donor_email")
	if !hasName || !hasEmail {
		return "", "", false
	}
	return n.(string), e.(string), true
}
