package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	SessionID     string
	Address       string
	Amount        decimal.Decimal // settlement asset, as stored on the session
	DisplayAmount string
	Rate          decimal.Decimal
	QrPayload     string
	QrImage       string // data url, empty if rendering failed
	ExpiresAt     time.Time
}

type InvoicesService struct {
	rates     Rates
	wallets   Wallets
	store     Sessions
	qrCodes   QrCodes
	ttl       time.Duration
	precision int32
	l         logger.Logger
}

func NewInvoicesService(rates Rates, wallets Wallets, store Sessions, qrCodes QrCodes, ttl time.Duration, precision int32, l logger.Logger) *InvoicesService {
	return &InvoicesService{rates: rates, wallets: wallets, store: store, qrCodes: qrCodes, ttl: ttl, precision: precision, l: l}
}

// rounds up so the displayed amount never asks for less than the price
func (s *InvoicesService) CalculateAmount(fiatAmount, rate decimal.Decimal) decimal.Decimal {
	return fiatAmount.Div(rate).RoundCeil(s.precision)
}

// CreateInvoice prices fiatAmount at the current rate and opens a pending
// session on a fresh address. Nothing is persisted unless the rate fetch
// succeeds.
func (s *InvoicesService) CreateInvoice(ctx context.Context, payerContact string, fiatAmount decimal.Decimal) (*Invoice, error) {
	if !fiatAmount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	rate, err := s.rates.Get(ctx)
	if err != nil {
		return nil, err
	}

	amount := s.CalculateAmount(fiatAmount, rate)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	address, sealedSecret, err := s.wallets.Generate()
	if err != nil {
		errId := s.l.TemplSessionErr("generate wallet error: "+err.Error(), logger.GenErrorId(), logger.NA, amount, logger.NA, logger.NA)
		return nil, fmt.Errorf("%w: %s", domain.ErrInternal, errId)
	}

	session, err := s.store.Create(ctx, payerContact, amount, address, sealedSecret, s.ttl)
	if err != nil {
		return nil, err
	}

	invoice := &Invoice{
		SessionID:     session.SessionID,
		Address:       session.ReceivingAddress,
		Amount:        session.RequestedAmount,
		DisplayAmount: session.RequestedAmount.StringFixed(s.precision),
		Rate:          rate,
		QrPayload:     QrPayload(session.ReceivingAddress, session.RequestedAmount),
		ExpiresAt:     session.ExpiresAt,
	}

	png, err := s.qrCodes.FindOrNew(invoice.QrPayload)
	if err != nil {
		s.l.TemplSessionErr("qr code error: "+err.Error(), logger.GenErrorId(), session.SessionID, amount, logger.NA, logger.NA)
	} else {
		invoice.QrImage = DataURL(png)
	}

	s.l.TemplSessionInfo("invoice created", logger.NA, session.SessionID, amount, logger.NA, logger.NA)

	return invoice, nil
}
