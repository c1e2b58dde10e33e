package logger

import (
	"github.com/shopspring/decimal"
)

func (l Logger) TemplSessionErr(message string, errorId string, sessionId string, amount decimal.Decimal, uri string, ip string) string {
	l.Error(message, LS_SESSIONS, true, "session_id", sessionId, "amount", amount.String(), "uri", uri, "error_id", errorId, "ip", ip)
	return errorId
}

func (l Logger) TemplSessionInfo(message string, errorId string, sessionId string, amount decimal.Decimal, uri string, ip string) string {
	l.Info(message, LS_SESSIONS, true, "session_id", sessionId, "amount", amount.String(), "uri", uri, "error_id", errorId, "ip", ip)
	return errorId
}

func (l Logger) TemplOrderErr(message string, errorId string, orderNumber int64, sessionId string, uri string, ip string) string {
	l.Error(message, LS_ORDERS, true, "order_number", orderNumber, "session_id", sessionId, "uri", uri, "error_id", errorId, "ip", ip)
	return errorId
}

func (l Logger) TemplOrderInfo(message string, orderNumber int64, sessionId string, total decimal.Decimal, amount decimal.Decimal) {
	l.Info(message, LS_ORDERS, true, "order_number", orderNumber, "session_id", sessionId, "total", total.String(), "amount", amount.String())
}

func (l Logger) TemplSweepErr(message string, sessionId string, address string, err error) {
	l.Error(message, LS_SWEEPS, true, "session_id", sessionId, "address", address, "error", err.Error())
}

func (l Logger) TemplSweepInfo(message string, sessionId string, address string, lamports uint64, txHash string) {
	l.Info(message, LS_SWEEPS, true, "session_id", sessionId, "address", address, "lamports", lamports, "tx_hash", txHash)
}

// use only for fatal errors
func (l Logger) TemplHTTPError(message string, ipv4 string, err error) {
	l.Fatal(message, LS_FATAL, true, "error", err.Error(), "ipv4", ipv4)
}

func (l Logger) TemplNatsError(message, natsUrl string, err error) {
	l.Error(message, LS_NATS, true, "nats_url", natsUrl, "error", err.Error())
}

func (l Logger) TemplNatsInfo(message, natsUrl string) {
	l.Info(message, LS_NATS, true, "nats_url", natsUrl, "error", NA)
}

func (l Logger) TemplWebhookErr(message, url string, attempts int, proxy string, payload []byte) {
	l.Error(message, LS_WEBHOOKS, true, "url", url, "attempts", attempts, "proxy", proxy, "payload", string(payload))
}
