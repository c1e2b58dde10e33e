// OPERATOR ROUTES

package v1

import (
	"checkout/api/internal/config"
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"checkout/api/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// POST /sweep
func (h *Handler) sweep(c *gin.Context) {
	results, err := h.services.Sweeper.SweepAll(c.Request.Context())
	if err != nil {
		errid := logger.GenErrorId()
		h.log.Error("sweep all error: "+err.Error(), logger.LS_SWEEPS, false, "error_id", errid)
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		return
	}

	var swept int
	for _, r := range results {
		if r.Outcome == service.SWEEP_SWEPT {
			swept++
		}
	}

	if results == nil {
		results = []service.SweepResult{}
	}
	c.AbortWithStatusJSON(http.StatusOK, responseSweep{Swept: swept, Results: results})
}

func (h *Handler) updateProxyList(c *gin.Context) {
	if h.config.ProxyPath == "" {
		responseErr(c, http.StatusBadRequest, fmt.Sprintf(domain.ErrMsgParamsBadRequest, "proxy_path is not configured"), "")
		return
	}

	h.services.WebhookSender.UpdateList(config.GetProxyList(h.config.ProxyPath))
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
	})
}

func (h *Handler) getProxyList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"proxies": h.services.WebhookSender.GetList(),
	})
}

func (h *Handler) initAdminRoutes(g *gin.RouterGroup) {
	g.POST("/sweep", h.adminAccessMiddleware(), h.sweep)
	g.POST("/webhook/updateProxyList", h.adminAccessMiddleware(), h.updateProxyList)
	g.POST("/webhook/getProxyList", h.adminAccessMiddleware(), h.getProxyList)
}
