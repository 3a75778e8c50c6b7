package middleware

import "github.com/gin-gonic/gin"

// Language mirrors the user's language cookie into an X-Language response
// header so edge caches and the client agree on the rendered locale.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, err := c.Cookie("language")
		if err != nil || lang == "" {
			lang = "en"
		}
		c.Writer.Header().Set("X-Language", lang)
		c.Next()
	}
}
