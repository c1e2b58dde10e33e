package repository

import (
	"checkout/api/internal/domain"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Sessions interface {
	Create(tx *gorm.DB, session *domain.PaymentSessions) error
	FindByID(tx *gorm.DB, sessionId string) (*domain.PaymentSessions, error)
	// pending -> paid, only while not expired. returns affected rows
	MarkPaid(tx *gorm.DB, sessionId string, paid PaidUpdate) (int64, error)
	// pending -> expired for one session past its expiry
	Expire(tx *gorm.DB, sessionId string, now time.Time) (int64, error)
	ExpireStale(tx *gorm.DB, now time.Time) (int64, error)
	FindUnswept(tx *gorm.DB, afterId uint, limit int) ([]domain.PaymentSessions, error)
	MarkSwept(tx *gorm.DB, sessionId string, sweepTx string, at time.Time) (int64, error)
}

type PaidUpdate struct {
	TxReference    string
	AmountReceived decimal.Decimal
	ReceiptMethod  string
	PaidAt         time.Time
}

type Orders interface {
	NextOrderNumber(tx *gorm.DB) (int64, error)
	Create(tx *gorm.DB, order *domain.Orders) error
	FindByNumber(tx *gorm.DB, orderNumber int64) (*domain.Orders, error)
	FindBySessionID(tx *gorm.DB, sessionId string) (*domain.Orders, error)
}

type Events interface {
	// no-op if an event of that type already exists for relationID
	Create(tx *gorm.DB, eventType string, relationID string, payload string) error
	FindNew(tx *gorm.DB, limit int) ([]domain.Events, error)
	Done(tx *gorm.DB, id uint) error
	Failed(tx *gorm.DB, id uint, maxAttempts int) error
}

type Repositories struct {
	Sessions Sessions
	Orders   Orders
	Events   Events
}

func New() *Repositories {
	return &Repositories{
		Sessions: InitSessionsRepo(),
		Orders:   InitOrdersRepo(),
		Events:   InitEventsRepo(),
	}
}
