package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinGate adapts the net/http Gate to Gin so the same middleware can
// front a gin.Engine.
func GinGate(gate *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := gate.Handle(next)
		handler.ServeHTTP(c.Writer, c.Request)

		// If the gate already responded (redirect), stop the Gin chain.
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
