package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GET /health
func (h *Handler) health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": false})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "db": h.db != nil})
}

func (h *Handler) initHealthRoutes(g *gin.RouterGroup) {
	g.GET("/health", h.health)
}
