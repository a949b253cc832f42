package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Home answers with a plain-text banner naming the app.
func Home(banner string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	}
}

// Healthz pings the store and reports 503 when it does not answer.
func Healthz(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /healthz"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := ping(ctx); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
