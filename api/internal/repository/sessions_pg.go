package repository

import (
	"checkout/api/internal/domain"
	"time"

	"gorm.io/gorm"
)

type SessionsRepo struct {
}

func InitSessionsRepo() *SessionsRepo {
	return &SessionsRepo{}
}

func (r *SessionsRepo) Create(tx *gorm.DB, session *domain.PaymentSessions) error {
	return tx.Create(session).Error
}

func (r *SessionsRepo) FindByID(tx *gorm.DB, sessionId string) (*domain.PaymentSessions, error) {
	var session domain.PaymentSessions
	return &session, tx.Where("session_id = ?", sessionId).First(&session).Error
}

// single conditional update, concurrent callers race on the row and at most one wins
func (r *SessionsRepo) MarkPaid(tx *gorm.DB, sessionId string, paid PaidUpdate) (int64, error) {
	res := tx.Model(&domain.PaymentSessions{}).
		Where("session_id = ? AND status = ? AND expires_at > ?", sessionId, domain.STATUS_PENDING, paid.PaidAt).
		Updates(map[string]any{
			"status":          domain.STATUS_PAID,
			"tx_reference":    paid.TxReference,
			"amount_received": paid.AmountReceived,
			"receipt_method":  paid.ReceiptMethod,
			"paid_at":         paid.PaidAt,
		})
	return res.RowsAffected, res.Error
}

func (r *SessionsRepo) Expire(tx *gorm.DB, sessionId string, now time.Time) (int64, error) {
	res := tx.Model(&domain.PaymentSessions{}).
		Where("session_id = ? AND status = ? AND expires_at <= ?", sessionId, domain.STATUS_PENDING, now).
		Update("status", domain.STATUS_EXPIRED)
	return res.RowsAffected, res.Error
}

func (r *SessionsRepo) ExpireStale(tx *gorm.DB, now time.Time) (int64, error) {
	res := tx.Model(&domain.PaymentSessions{}).
		Where("status = ? AND expires_at <= ?", domain.STATUS_PENDING, now).
		Update("status", domain.STATUS_EXPIRED)
	return res.RowsAffected, res.Error
}

// FindUnswept pages paid and unswept sessions by id, starting after afterId
func (r *SessionsRepo) FindUnswept(tx *gorm.DB, afterId uint, limit int) ([]domain.PaymentSessions, error) {
	var sessions []domain.PaymentSessions
	return sessions, tx.Where("status = ? AND swept = ? AND id > ?", domain.STATUS_PAID, false, afterId).Order("id").Limit(limit).Find(&sessions).Error
}

func (r *SessionsRepo) MarkSwept(tx *gorm.DB, sessionId string, sweepTx string, at time.Time) (int64, error) {
	res := tx.Model(&domain.PaymentSessions{}).
		Where("session_id = ? AND swept = ?", sessionId, false).
		Updates(map[string]any{
			"swept":    true,
			"sweep_tx": sweepTx,
			"swept_at": at,
		})
	return res.RowsAffected, res.Error
}
