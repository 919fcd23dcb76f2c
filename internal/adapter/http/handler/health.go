package handler

import (
	"net/http"

	"funding-platform/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck handles GET /health — deep health check verifying all
// dependencies. Responds in plaintext: "ok" when every dependency answers,
// 503 naming the failed ones otherwise.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var failed string
		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				if failed != "" {
					failed += ","
				}
				failed += checker.Name()
			}
		}

		if failed != "" {
			c.String(http.StatusServiceUnavailable, "degraded: %s", failed)
			return
		}
		c.String(http.StatusOK, "ok")
	}
}
