package v1

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"checkout/api/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) newResponseInvoice(invoice *service.Invoice) responseInvoiceCreated {
	return responseInvoiceCreated{
		SessionID:     invoice.SessionID,
		Address:       invoice.Address,
		Amount:        invoice.Amount.String(),
		DisplayAmount: invoice.DisplayAmount,
		Rate:          invoice.Rate.String(),
		QrPayload:     invoice.QrPayload,
		QrCode:        invoice.QrImage,
		QrCodeUrl:     fmt.Sprintf("%s://%s/v1/payments/qr-code/%s", h.config.Api.Proto, h.config.Api.Ipv4, invoice.SessionID),
		ExpiresAt:     invoice.ExpiresAt.UTC().Format(domain.TIME_LAYOUT),
	}
}

// POST /payments/create-invoice
func (h *Handler) createInvoice(c *gin.Context) {
	var data createInvoiceData
	if !bindAndValidate(c, &data) || !requirePositive(c, "requested_amount", data.RequestedAmount) {
		return
	}

	invoice, err := h.services.Invoices.CreateInvoice(c.Request.Context(), data.PayerContact, data.RequestedAmount)
	if err != nil {
		h.responseServiceErr(c, err, logger.NA, data.RequestedAmount)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, h.newResponseInvoice(invoice))

	h.log.TemplSessionInfo("new invoice created", logger.NA, invoice.SessionID, invoice.Amount, c.Request.RequestURI, c.ClientIP())
}

// POST /payments/verify-txn
func (h *Handler) verifyTxn(c *gin.Context) {
	var data verifyTxnData
	if !bindAndValidate(c, &data) {
		return
	}

	res, err := h.services.Verifier.Verify(c.Request.Context(), data.SessionID, data.TxReferenceInput)
	if err != nil {
		h.responseServiceErr(c, err, data.SessionID, decimal.Zero)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseVerified{
		Success:        res.Accepted,
		AlreadyPaid:    res.AlreadyPaid,
		Message:        res.Message,
		SessionID:      data.SessionID,
		AmountReceived: res.AmountReceived.String(),
		TxReference:    res.TxReference,
		Method:         string(res.Method),
	})
}

// GET /payments/session/:session_id
func (h *Handler) sessionInfo(c *gin.Context) {
	sessionId := c.Param("session_id")
	if sessionId == "" {
		responseErr(c, http.StatusBadRequest, fmt.Sprintf(domain.ErrMsgParamsBadRequest, domain.ErrParamEmptySessionId), "")
		return
	}

	session, err := h.services.Sessions.Get(c.Request.Context(), sessionId)
	if err != nil {
		h.responseServiceErr(c, err, sessionId, decimal.Zero)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseSession{Session: domain.NewResponseSessionInfo(session, h.now())})
}

// GET /payments/qr-code/:session_id
func (h *Handler) qrCode(c *gin.Context) {
	sessionId := c.Param("session_id")
	if sessionId == "" {
		responseErr(c, http.StatusBadRequest, fmt.Sprintf(domain.ErrMsgParamsBadRequest, domain.ErrParamEmptySessionId), "")
		return
	}

	session, err := h.services.Sessions.Get(c.Request.Context(), sessionId)
	if err != nil {
		h.responseServiceErr(c, err, sessionId, decimal.Zero)
		return
	}

	imageData, err := h.services.QrCodes.FindOrNew(service.QrPayload(session.ReceivingAddress, session.RequestedAmount))
	if err != nil {
		errid := h.log.TemplSessionErr("qr code find or new error: "+err.Error(), logger.GenErrorId(), sessionId, session.RequestedAmount, c.Request.RequestURI, c.ClientIP())
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		return
	}

	c.Data(http.StatusOK, "image/png", imageData)
}

func (h *Handler) initPaymentRoutes(g *gin.RouterGroup) {
	g.POST("/payments/create-invoice", h.invoiceRateLimitMiddleware(), h.createInvoice)
	g.POST("/payments/verify-txn", h.verifyTxn)
	g.GET("/payments/session/:session_id", h.sessionInfo)
	g.GET("/payments/qr-code/:session_id", h.qrCode)
}
