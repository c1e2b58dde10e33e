package logger

const NA = "N/A"

// log level
const (
	LL_ERROR = iota
	LL_FATAL
	LL_INFO
	LL_DEBUG
)

// log stream
const (
	LS_SESSIONS = iota
	LS_FATAL
	LS_NATS
	LS_WEBHOOKS
	LS_ORDERS
	LS_SWEEPS
)

type Logstream uint8
type LogLevel uint8

func (l Logstream) ToString() string {
	return [...]string{"sessions", "fatal", "nats", "webhooks", "orders", "sweeps"}[l]
}

func (l LogLevel) ToString() string {
	return [...]string{"ERROR", "FATAL", "INFO", "DEBUG"}[l]
}
