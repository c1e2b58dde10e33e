package v1

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"checkout/api/internal/service"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// POST /orders
func (h *Handler) createOrder(c *gin.Context) {
	var data createOrderData
	if !bindAndValidate(c, &data) || !requirePositive(c, "total", data.Total) {
		return
	}

	order, invoice, err := h.services.Orders.Create(c.Request.Context(), service.OrderRequest{
		PayerContact:   data.PayerContact,
		Product:        data.Product,
		Shipping:       data.Shipping,
		TotalFiat:      data.Total,
		ShippingOrigin: data.ShippingOrigin,
	})
	if err != nil {
		h.responseServiceErr(c, err, logger.NA, data.Total)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseOrderCreated{
		OrderNumber: order.OrderNumber,
		Invoice:     h.newResponseInvoice(invoice),
	})
}

// GET /orders/:order_number
func (h *Handler) orderInfo(c *gin.Context) {
	orderNumber, err := strconv.ParseInt(c.Param("order_number"), 10, 64)
	if err != nil {
		responseErr(c, http.StatusBadRequest, fmt.Sprintf(domain.ErrMsgParamsBadRequest, domain.ErrParamEmptyOrderNumber), "")
		return
	}

	order, session, err := h.services.Orders.Find(c.Request.Context(), orderNumber)
	if err != nil {
		h.responseServiceErr(c, err, logger.NA, decimal.Zero)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseOrder{
		OrderNumber:    order.OrderNumber,
		ProductTitle:   order.ProductTitle,
		ProductUrl:     order.ProductUrl,
		Total:          order.TotalFiat.String(),
		Amount:         order.Amount.String(),
		ShippingOrigin: order.ShippingOrigin,
		CreatedAt:      order.CreatedAt.UTC().Format(domain.TIME_LAYOUT),
		Session:        domain.NewResponseSessionInfo(session, h.now()),
	})
}

func (h *Handler) initOrderRoutes(g *gin.RouterGroup) {
	g.POST("/orders", h.invoiceRateLimitMiddleware(), h.createOrder)
	g.GET("/orders/:order_number", h.orderInfo)
}
