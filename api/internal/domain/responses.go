package domain

import "time"

const (
	ErrMsgRateLimitExceeded   = "rate limit exceeded"
	ErrMsgInternalServerError = "internal server error"
	ErrMsgUpstreamError       = "upstream service unavailable, try again later"
	ErrMsgBadRequest          = "bad request"
	ErrMsgParamsBadRequest    = "bad request: %s"
	ErrMsgAccessDenied        = "access denied"
	ErrMsgNotFound            = "not found"
)

const (
	ErrParamEmptySessionId   = "session id is empty"
	ErrParamEmptyOrderNumber = "order number is invalid"
)

type ResponseSessionInfo struct {
	SessionID      string `json:"session_id"`
	Status         string `json:"status"`
	IsPaid         bool   `json:"is_paid"`
	Address        string `json:"address"`
	Amount         string `json:"amount"`
	AmountReceived string `json:"amount_received,omitempty"`
	TxReference    string `json:"tx_reference,omitempty"`
	CreatedAt      string `json:"created_at"`
	ExpiresAt      string `json:"expires_at"`
	PaidAt         string `json:"paid_at,omitempty"`
}

const TIME_LAYOUT = "2006-01-02 15:04:05"

func NewResponseSessionInfo(session *PaymentSessions, now time.Time) ResponseSessionInfo {
	status := session.EffectiveStatus(now)

	var response = ResponseSessionInfo{
		SessionID:   session.SessionID,
		Status:      status.ToString(),
		IsPaid:      status.IsPaid(),
		Address:     session.ReceivingAddress,
		Amount:      session.RequestedAmount.String(),
		TxReference: session.TxRef(),
		CreatedAt:   session.CreatedAt.UTC().Format(TIME_LAYOUT),
		ExpiresAt:   session.ExpiresAt.UTC().Format(TIME_LAYOUT),
	}

	if status.IsPaid() {
		response.AmountReceived = session.AmountReceived.String()
	}
	if session.PaidAt != nil {
		response.PaidAt = session.PaidAt.UTC().Format(TIME_LAYOUT)
	}

	return response
}
