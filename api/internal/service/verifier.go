package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"checkout/blockchain/sol"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	base58Class = `[1-9A-HJ-NP-Za-km-z]`

	// signatures are 64 bytes, 87-88 chars in base58
	maxReferenceLen = 128
)

var (
	bareReferenceRe = regexp.MustCompile(`^` + base58Class + `+$`)
	explorerTxRe    = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:solscan\.io|explorer\.solana\.com|solana\.fm)/tx/(` + base58Class + `+)(?:[/?#].*)?$`)
)

// NormalizeReference accepts a bare transaction id or an explorer link
// carrying one and returns the bare id.
func NormalizeReference(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty", domain.ErrMalformedReference)
	}

	var ref string
	if m := explorerTxRe.FindStringSubmatch(input); m != nil {
		ref = m[1]
	} else if bareReferenceRe.MatchString(input) {
		ref = input
	} else {
		return "", fmt.Errorf("%w: no transaction id in %q", domain.ErrMalformedReference, input)
	}

	if len(ref) > maxReferenceLen {
		return "", fmt.Errorf("%w: too long", domain.ErrMalformedReference)
	}
	return ref, nil
}

type VerifyResult struct {
	Accepted       bool
	AlreadyPaid    bool
	AmountReceived decimal.Decimal
	TxReference    string
	Method         ReceiptMethod
	Message        string
	Session        *domain.PaymentSessions
}

type VerifierService struct {
	store     Sessions
	chain     Chain
	tolerance decimal.Decimal
	l         logger.Logger
	now       func() time.Time
}

func NewVerifierService(store Sessions, chain Chain, tolerance decimal.Decimal, l logger.Logger) *VerifierService {
	return &VerifierService{store: store, chain: chain, tolerance: tolerance, l: l, now: time.Now}
}

func alreadyPaid(session *domain.PaymentSessions) *VerifyResult {
	return &VerifyResult{
		Accepted:       true,
		AlreadyPaid:    true,
		AmountReceived: session.AmountReceived,
		TxReference:    session.TxRef(),
		Method:         ReceiptMethod(session.ReceiptMethod),
		Message:        "session already paid",
		Session:        session,
	}
}

// Verify checks a payer supplied transaction against the session and flips
// it to paid on success. Repeated calls after acceptance return the stored
// result. A rejection never mutates the session.
func (s *VerifierService) Verify(ctx context.Context, sessionId string, txReferenceInput string) (*VerifyResult, error) {
	ref, err := NormalizeReference(txReferenceInput)
	if err != nil {
		return nil, err
	}

	session, err := s.store.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	switch session.EffectiveStatus(s.now()) {
	case domain.STATUS_PAID:
		return alreadyPaid(session), nil
	case domain.STATUS_EXPIRED:
		return nil, fmt.Errorf("%w at %s", domain.ErrSessionExpired, session.ExpiresAt.UTC().Format(time.RFC3339))
	}

	effects, err := s.chain.GetTransaction(ctx, ref)
	if err != nil {
		switch {
		case errors.Is(err, sol.ErrTxNotFound):
			return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, ref)
		case errors.Is(err, sol.ErrMalformedSignature):
			return nil, fmt.Errorf("%w: %s", domain.ErrMalformedReference, ref)
		default:
			return nil, fmt.Errorf("%w: %s", domain.ErrChainUnavailable, err.Error())
		}
	}

	if effects.Failed {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionFailed, ref)
	}

	receipt := MeasureReceipt(effects, session.ReceivingAddress)

	threshold := session.RequestedAmount.Sub(s.tolerance)
	if receipt.Amount.LessThan(threshold) {
		return nil, &domain.ShortfallError{
			Requested: session.RequestedAmount,
			Received:  receipt.Amount,
			Shortfall: decimal.Max(threshold.Sub(receipt.Amount), decimal.Zero),
		}
	}

	paid, err := s.store.TransitionToPaid(ctx, sessionId, ref, receipt)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyPaid) && paid != nil {
			// lost the race to a concurrent verification
			return alreadyPaid(paid), nil
		}
		return nil, err
	}

	s.l.TemplSessionInfo("session paid via "+string(receipt.Method)+" tx "+ref, logger.NA, sessionId, receipt.Amount, logger.NA, logger.NA)

	return &VerifyResult{
		Accepted:       true,
		AmountReceived: paid.AmountReceived,
		TxReference:    paid.TxRef(),
		Method:         receipt.Method,
		Message:        "payment accepted",
		Session:        paid,
	}, nil
}
