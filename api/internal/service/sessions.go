package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/infra/postgres"
	"checkout/api/internal/logger"
	"checkout/api/internal/repository"
	"checkout/pkg/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotTransitioned = errors.New("session not transitioned")

type SessionsService struct {
	repo   repository.Sessions
	orders repository.Orders
	events repository.Events
	db     *gorm.DB
	l      logger.Logger
	now    func() time.Time
}

func NewSessionsService(db *gorm.DB, repo repository.Sessions, orders repository.Orders, events repository.Events, l logger.Logger) *SessionsService {
	return &SessionsService{db: db, repo: repo, orders: orders, events: events, l: l, now: time.Now}
}

func (s *SessionsService) Create(ctx context.Context, payerContact string, requestedAmount decimal.Decimal, address string, sealedSecret string, ttl time.Duration) (*domain.PaymentSessions, error) {
	if !requestedAmount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	now := s.now().UTC()
	session := &domain.PaymentSessions{
		SessionID:        uuid.NewString(),
		PayerContact:     payerContact,
		RequestedAmount:  requestedAmount,
		ReceivingAddress: address,
		CustodialSecret:  sealedSecret,
		Status:           domain.STATUS_PENDING,
		AmountReceived:   decimal.Zero,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}

	if err := s.repo.Create(s.db.WithContext(ctx), session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

// Get applies lazy expiry: a pending session past expires_at is returned
// as expired and the row is updated on a best effort basis.
func (s *SessionsService) Get(ctx context.Context, sessionId string) (*domain.PaymentSessions, error) {
	if uuid.Validate(sessionId) != nil {
		return nil, domain.ErrInvalidSessionId
	}

	session, err := s.repo.FindByID(s.db.WithContext(ctx), sessionId)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	now := s.now()
	if session.Status.IsPending() && session.IsExpiredAt(now) {
		if _, err := s.repo.Expire(s.db.WithContext(ctx), sessionId, now); err != nil {
			s.l.TemplSessionErr("lazy expire error: "+err.Error(), logger.GenErrorId(), sessionId, session.RequestedAmount, logger.NA, logger.NA)
		}
		session.Status = domain.STATUS_EXPIRED
	}

	return session, nil
}

// TransitionToPaid flips pending to paid in one conditional update and
// enqueues the order_paid event in the same transaction. When the update
// matches nothing the current row decides the error: ErrAlreadyPaid comes
// back together with the stored session.
func (s *SessionsService) TransitionToPaid(ctx context.Context, sessionId string, txReference string, receipt Receipt) (*domain.PaymentSessions, error) {
	paidAt := s.now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.MarkPaid(tx, sessionId, repository.PaidUpdate{
			TxReference:    txReference,
			AmountReceived: receipt.Amount,
			ReceiptMethod:  string(receipt.Method),
			PaidAt:         paidAt,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return errNotTransitioned
		}

		session, err := s.repo.FindByID(tx, sessionId)
		if err != nil {
			return err
		}

		return s.enqueueOrderPaid(tx, session)
	})

	switch {
	case err == nil:
	case errors.Is(err, errNotTransitioned):
		return s.classify(ctx, sessionId)
	case postgres.IsDuplicate(err):
		return nil, fmt.Errorf("%w: %s", domain.ErrTxAlreadyUsed, txReference)
	default:
		return nil, fmt.Errorf("transition to paid: %w", err)
	}

	return s.repo.FindByID(s.db.WithContext(ctx), sessionId)
}

func (s *SessionsService) classify(ctx context.Context, sessionId string) (*domain.PaymentSessions, error) {
	session, err := s.repo.FindByID(s.db.WithContext(ctx), sessionId)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	switch session.EffectiveStatus(s.now()) {
	case domain.STATUS_PAID:
		return session, domain.ErrAlreadyPaid
	case domain.STATUS_EXPIRED:
		return session, fmt.Errorf("%w at %s", domain.ErrSessionExpired, session.ExpiresAt.UTC().Format(time.RFC3339))
	default:
		return nil, fmt.Errorf("%w: session %s still pending after paid update", domain.ErrInternal, sessionId)
	}
}

func (s *SessionsService) enqueueOrderPaid(tx *gorm.DB, session *domain.PaymentSessions) error {
	payload := domain.PayloadOrderPaid{
		SessionID:      session.SessionID,
		PayerContact:   session.PayerContact,
		Address:        session.ReceivingAddress,
		Amount:         session.RequestedAmount.String(),
		AmountReceived: session.AmountReceived.String(),
		TxReference:    session.TxRef(),
	}
	if session.PaidAt != nil {
		payload.PaidAt = session.PaidAt.UTC().Format(domain.TIME_LAYOUT)
	}

	order, err := s.orders.FindBySessionID(tx, session.SessionID)
	if err == nil {
		payload.OrderNumber = order.OrderNumber
	} else if !postgres.IsNotFound(err) {
		return err
	}

	return s.events.Create(tx, domain.EVENT_ORDER_PAID, session.SessionID, utils.MarshalString(payload))
}

// no-op if already swept
func (s *SessionsService) MarkSwept(ctx context.Context, sessionId string, sweepTx string) (*domain.PaymentSessions, error) {
	if _, err := s.repo.MarkSwept(s.db.WithContext(ctx), sessionId, sweepTx, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("mark swept: %w", err)
	}

	session, err := s.repo.FindByID(s.db.WithContext(ctx), sessionId)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *SessionsService) ListUnswept(ctx context.Context, afterId uint, limit int) ([]domain.PaymentSessions, error) {
	return s.repo.FindUnswept(s.db.WithContext(ctx), afterId, limit)
}

func (s *SessionsService) ExpireStale(ctx context.Context) (int64, error) {
	return s.repo.ExpireStale(s.db.WithContext(ctx), s.now())
}
