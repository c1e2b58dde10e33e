package v1

import (
	"checkout/api/internal/config"
	"checkout/api/internal/logger"
	"checkout/api/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	services *service.Services
	db       *gorm.DB
	config   *config.Config
	log      logger.Logger
	now      func() time.Time
}

func (h *Handler) InitRoutes(g *gin.RouterGroup) {
	{
		h.initPaymentRoutes(g)
		h.initOrderRoutes(g)
		h.initAdminRoutes(g)
		h.initHealthRoutes(g)
	}
}

func NewHandler(services *service.Services, db *gorm.DB, config *config.Config, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		log:      log,
		services: services,
		db:       db,
		now:      time.Now,
	}
}
