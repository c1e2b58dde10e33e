package domain

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

var (
	// input
	ErrMalformedReference = errors.New("malformed transaction reference")
	ErrInvalidSessionId   = errors.New("invalid session id")
	ErrInvalidAmount      = errors.New("invalid amount")

	// not found
	ErrSessionNotFound     = errors.New("session not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// business rules
	ErrSessionExpired     = errors.New("session expired")
	ErrAlreadyPaid        = errors.New("session already paid")
	ErrInsufficientAmount = errors.New("insufficient amount")
	ErrTransactionFailed  = errors.New("transaction failed on chain")
	ErrTxAlreadyUsed      = errors.New("transaction already credited to another session")
	ErrNothingToSweep     = errors.New("nothing to sweep")
	ErrSweepInProgress    = errors.New("sweep in progress")

	// upstream
	ErrOracleUnavailable = errors.New("price oracle unavailable")
	ErrChainUnavailable  = errors.New("chain oracle unavailable")

	// fatal
	ErrInternal = errors.New("internal error")
)

// rejection below tolerance. Shortfall = requested - tolerance - received, floored at zero
type ShortfallError struct {
	Requested decimal.Decimal
	Received  decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("%s: received %s of %s, short by %s", ErrInsufficientAmount, e.Received, e.Requested, e.Shortfall)
}

func (e *ShortfallError) Unwrap() error {
	return ErrInsufficientAmount
}

type Category string

const (
	CATEGORY_INPUT    Category = "input"
	CATEGORY_NOTFOUND Category = "not_found"
	CATEGORY_BUSINESS Category = "business"
	CATEGORY_UPSTREAM Category = "upstream"
	CATEGORY_FATAL    Category = "fatal"
)

// Categorize returns the machine-readable category of err and whether
// the same request may succeed if repeated later.
func Categorize(err error) (category Category, retryable bool) {
	switch {
	case errors.Is(err, ErrMalformedReference),
		errors.Is(err, ErrInvalidSessionId),
		errors.Is(err, ErrInvalidAmount):
		return CATEGORY_INPUT, false
	case errors.Is(err, ErrTransactionNotFound):
		// not confirmed or not propagated yet
		return CATEGORY_NOTFOUND, true
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrOrderNotFound):
		return CATEGORY_NOTFOUND, false
	case errors.Is(err, ErrInsufficientAmount):
		// a top-up transaction can still settle the session
		return CATEGORY_BUSINESS, true
	case errors.Is(err, ErrSweepInProgress):
		return CATEGORY_BUSINESS, true
	case errors.Is(err, ErrSessionExpired),
		errors.Is(err, ErrAlreadyPaid),
		errors.Is(err, ErrTransactionFailed),
		errors.Is(err, ErrTxAlreadyUsed),
		errors.Is(err, ErrNothingToSweep):
		return CATEGORY_BUSINESS, false
	case errors.Is(err, ErrOracleUnavailable),
		errors.Is(err, ErrChainUnavailable):
		return CATEGORY_UPSTREAM, true
	default:
		return CATEGORY_FATAL, false
	}
}

// true for errors whose message can be shown to the client as is
func IsClientFacing(err error) bool {
	category, _ := Categorize(err)
	return category != CATEGORY_UPSTREAM && category != CATEGORY_FATAL
}

func GetStatusByErr(err error) (status int) {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, ErrMalformedReference),
		errors.Is(err, ErrInvalidSessionId),
		errors.Is(err, ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrTransactionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInsufficientAmount),
		errors.Is(err, ErrTxAlreadyUsed),
		errors.Is(err, ErrSweepInProgress):
		status = http.StatusConflict
	case errors.Is(err, ErrSessionExpired):
		status = http.StatusGone
	case errors.Is(err, ErrTransactionFailed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrAlreadyPaid):
		status = http.StatusOK
	case errors.Is(err, ErrOracleUnavailable),
		errors.Is(err, ErrChainUnavailable):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	return status
}
