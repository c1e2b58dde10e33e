package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentSessions struct {
	ID               uint            `gorm:"primaryKey"`
	SessionID        string          `gorm:"size:36;uniqueIndex;not null"`
	PayerContact     string          `gorm:"type:text"`
	RequestedAmount  decimal.Decimal `gorm:"type:numeric;not null"` // settlement asset units, fixed at issuance
	ReceivingAddress string          `gorm:"size:64;uniqueIndex;not null"`
	CustodialSecret  string          `gorm:"type:text;not null"` // sealed with the server key, never leaves the api
	Status           Status          `gorm:"type:int8;index"`
	Swept            bool            `gorm:"not null;default:false"`
	SweepTx          string          `gorm:"type:text"`
	TxReference      *string         `gorm:"size:128;uniqueIndex"` // null until paid; one transaction can credit one session
	AmountReceived   decimal.Decimal `gorm:"type:numeric"`
	ReceiptMethod    string          `gorm:"size:32"`
	CreatedAt        time.Time
	ExpiresAt        time.Time `gorm:"index"`
	PaidAt           *time.Time
	SweptAt          *time.Time
}

type Status uint8

const (
	STATUS_PENDING Status = iota
	STATUS_PAID
	STATUS_EXPIRED
)

var Statuses = [...]string{"pending", "paid", "expired"}

func (s Status) ToString() string {
	if int(s) >= len(Statuses) {
		return "unknown"
	}
	return Statuses[s]
}

func StrToStatus(s string) (Status, bool) {
	for i, statusName := range Statuses {
		if s == statusName {
			return Status(i), true
		}
	}
	return STATUS_PENDING, false
}

func (s Status) IsPaid() bool {
	return s == STATUS_PAID
}

func (s Status) IsPending() bool {
	return s == STATUS_PENDING
}

// pending and past expires_at. such a session is unpayable even if
// nothing has written the expired status yet
func (p *PaymentSessions) IsExpiredAt(now time.Time) bool {
	if p.Status == STATUS_EXPIRED {
		return true
	}
	return p.Status == STATUS_PENDING && !now.Before(p.ExpiresAt)
}

// status as seen by a reader at the given time
func (p *PaymentSessions) EffectiveStatus(now time.Time) Status {
	if p.IsExpiredAt(now) {
		return STATUS_EXPIRED
	}
	return p.Status
}

func (p *PaymentSessions) TxRef() string {
	if p.TxReference == nil {
		return ""
	}
	return *p.TxReference
}
