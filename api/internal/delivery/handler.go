package delivery

import (
	"checkout/api/internal/config"
	v1 "checkout/api/internal/delivery/rest/v1"
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"checkout/api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	Services *service.Services
	Db       *gorm.DB
	Config   *config.Config
	Log      logger.Logger
}

func (h *Handler) InitAPI(r *gin.Engine) {
	v1Group := r.Group("/v1")

	v1Handler := v1.NewHandler(h.Services, h.Db, h.Config, h.Log)

	{
		v1Handler.InitRoutes(v1Group)
	}

	// same error shape as the api for unknown paths
	r.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     true,
			"error_id":  logger.NA,
			"category":  domain.CATEGORY_INPUT,
			"retryable": false,
			"msg":       domain.ErrMsgNotFound,
		})
	})
}

func InitHandler(services *service.Services, db *gorm.DB, config *config.Config, log logger.Logger) *Handler {
	return &Handler{
		Config:   config,
		Log:      log,
		Services: services,
		Db:       db,
	}
}
