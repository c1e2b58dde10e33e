package v1

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"checkout/api/internal/service"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type responseError struct {
	Error     bool   `json:"error"`
	ErrorID   string `json:"error_id"`
	Category  string `json:"category"`
	Retryable bool   `json:"retryable"`
	Msg       string `json:"msg"`
	Shortfall string `json:"shortfall,omitempty"`
}

// /payments/create-invoice
type responseInvoiceCreated struct {
	Error         bool   `json:"error"`
	SessionID     string `json:"session_id"`
	Address       string `json:"address"`
	Amount        string `json:"amount"`
	DisplayAmount string `json:"display_amount"`
	Rate          string `json:"rate"`
	QrPayload     string `json:"qr_payload"`
	QrCode        string `json:"qr_code"`     // data url
	QrCodeUrl     string `json:"qr_code_url"` // png endpoint
	ExpiresAt     string `json:"expires_at"`
}

// /payments/verify-txn
type responseVerified struct {
	Error          bool   `json:"error"`
	Success        bool   `json:"success"`
	AlreadyPaid    bool   `json:"already_paid"`
	Message        string `json:"message"`
	SessionID      string `json:"session_id"`
	AmountReceived string `json:"amount_received"`
	TxReference    string `json:"tx_reference"`
	Method         string `json:"method,omitempty"`
}

// /payments/session/:session_id
type responseSession struct {
	Error   bool                       `json:"error"`
	Session domain.ResponseSessionInfo `json:"session"`
}

// /orders
type responseOrderCreated struct {
	Error       bool                   `json:"error"`
	OrderNumber int64                  `json:"order_number"`
	Invoice     responseInvoiceCreated `json:"invoice"`
}

// /orders/:order_number
type responseOrder struct {
	Error          bool                       `json:"error"`
	OrderNumber    int64                      `json:"order_number"`
	ProductTitle   string                     `json:"product_title"`
	ProductUrl     string                     `json:"product_url"`
	Total          string                     `json:"total"`
	Amount         string                     `json:"amount"`
	ShippingOrigin string                     `json:"shipping_origin,omitempty"`
	CreatedAt      string                     `json:"created_at"`
	Session        domain.ResponseSessionInfo `json:"session"`
}

// /sweep
type responseSweep struct {
	Error   bool                  `json:"error"`
	Swept   int                   `json:"swept"`
	Results []service.SweepResult `json:"results"`
}

// for errors raised by the handler itself: bad params, auth, rate limits
func responseErr(c *gin.Context, statusCode int, msg, errorID string) {
	if errorID == "" {
		errorID = logger.NA
	}

	c.AbortWithStatusJSON(statusCode, responseError{Error: true, ErrorID: errorID, Category: string(domain.CATEGORY_INPUT), Msg: msg})
}

// responseServiceErr maps a service error to status, category and message.
// Upstream and fatal errors are logged and answered with a generic message
// and the error id of the log record.
func (h *Handler) responseServiceErr(c *gin.Context, err error, sessionId string, amount decimal.Decimal) {
	category, retryable := domain.Categorize(err)

	body := responseError{
		Error:     true,
		ErrorID:   logger.NA,
		Category:  string(category),
		Retryable: retryable,
		Msg:       err.Error(),
	}

	var shortfall *domain.ShortfallError
	if errors.As(err, &shortfall) {
		body.Shortfall = shortfall.Shortfall.String()
	}

	if !domain.IsClientFacing(err) {
		body.ErrorID = h.log.TemplSessionErr(err.Error(), logger.GenErrorId(), sessionId, amount, c.Request.RequestURI, c.ClientIP())
		body.Msg = domain.ErrMsgInternalServerError
		if category == domain.CATEGORY_UPSTREAM {
			body.Msg = domain.ErrMsgUpstreamError
		}
	}

	c.AbortWithStatusJSON(domain.GetStatusByErr(err), body)
}
