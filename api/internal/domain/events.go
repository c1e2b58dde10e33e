package domain

import "time"

const (
	EVENT_ORDER_PAID = "order_paid"
)

const (
	EVENT_STATUS_NEW  = "new"
	EVENT_STATUS_DONE = "done"

	// delivery gave up after too many attempts
	EVENT_STATUS_FAILED = "failed"
)

// outbox rows, written in the same transaction as the state change they announce
type Events struct {
	ID         uint   `gorm:"primaryKey"`
	RelationID string `gorm:"size:36;not null;uniqueIndex:idx_event_relation"`
	Type       string `gorm:"type:varchar(64);not null;uniqueIndex:idx_event_relation"`
	Payload    string `gorm:"type:text"`
	Status     string `gorm:"size:16;index"`
	Attempts   int
	CreatedAt  time.Time
}

type PayloadOrderPaid struct {
	SessionID      string `json:"session_id"`
	OrderNumber    int64  `json:"order_number,omitempty"`
	PayerContact   string `json:"payer_contact,omitempty"`
	Address        string `json:"address"`
	Amount         string `json:"amount"`
	AmountReceived string `json:"amount_received"`
	TxReference    string `json:"tx_reference"`
	PaidAt         string `json:"paid_at"`
}
