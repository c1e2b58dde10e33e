package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/infra/cache"
	"checkout/api/internal/logger"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T, store *memStore, source rateSourceFunc) *InvoicesService {
	t.Helper()
	rates := NewRatesService(source, "SOL", "USDT", 0, cache.InitStorage())
	return NewInvoicesService(rates, newWallets(t), store, NewQrCodesService(), 30*time.Minute, 4, logger.Logger{})
}

func fixedRate(rate string) rateSourceFunc {
	return func(context.Context, string, string) (decimal.Decimal, error) {
		return decimal.RequireFromString(rate), nil
	}
}

func TestCreateInvoice(t *testing.T) {
	store := newMemStore()
	issuer := newIssuer(t, store, fixedRate("145.37"))

	fiat := decimal.RequireFromString("59.99")
	invoice, err := issuer.CreateInvoice(context.Background(), gofakeit.Email(), fiat)
	require.NoError(t, err)

	// 59.99 / 145.37 = 0.41267... rounded up to 4 places
	assert.Equal(t, "0.4127", invoice.DisplayAmount)
	assert.True(t, invoice.Amount.Equal(decimal.RequireFromString("0.4127")))
	assert.Equal(t, "solana:"+invoice.Address+"?amount=0.4127", invoice.QrPayload)
	assert.True(t, strings.HasPrefix(invoice.QrImage, "data:image/png;base64,"))

	session, err := store.Get(context.Background(), invoice.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PENDING, session.Status)
	assert.True(t, session.RequestedAmount.Equal(invoice.Amount))
	assert.Equal(t, invoice.Address, session.ReceivingAddress)
	assert.NotEmpty(t, session.CustodialSecret)
	assert.WithinDuration(t, session.CreatedAt.Add(30*time.Minute), session.ExpiresAt, time.Second)
}

func TestCreateInvoiceUniqueAddresses(t *testing.T) {
	store := newMemStore()
	issuer := newIssuer(t, store, fixedRate("100"))

	seen := map[string]bool{}
	for range 10 {
		invoice, err := issuer.CreateInvoice(context.Background(), "", decimal.NewFromInt(int64(gofakeit.IntRange(1, 500))))
		require.NoError(t, err)
		require.False(t, seen[invoice.Address])
		seen[invoice.Address] = true
	}
	assert.Equal(t, 10, store.count())
}

func TestCreateInvoiceOracleUnavailable(t *testing.T) {
	store := newMemStore()
	issuer := newIssuer(t, store, func(context.Context, string, string) (decimal.Decimal, error) {
		return decimal.Zero, errors.New("connection refused")
	})

	invoice, err := issuer.CreateInvoice(context.Background(), gofakeit.Email(), decimal.RequireFromString("1.2345"))
	assert.Nil(t, invoice)
	require.ErrorIs(t, err, domain.ErrOracleUnavailable)
	assert.Equal(t, 0, store.count())
}

func TestCreateInvoiceInvalidAmount(t *testing.T) {
	store := newMemStore()
	issuer := newIssuer(t, store, fixedRate("100"))

	for _, amount := range []string{"0", "-5"} {
		_, err := issuer.CreateInvoice(context.Background(), "", decimal.RequireFromString(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
	assert.Equal(t, 0, store.count())
}

func TestCalculateAmount(t *testing.T) {
	issuer := &InvoicesService{precision: 4}

	tests := []struct {
		fiat, rate, want string
	}{
		{"100", "100", "1"},
		{"1", "3", "0.3334"},
		{"0.00001", "100", "0.0001"},
		{"250", "149.99", "1.6668"},
	}

	for _, tt := range tests {
		got := issuer.CalculateAmount(decimal.RequireFromString(tt.fiat), decimal.RequireFromString(tt.rate))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s/%s = %s", tt.fiat, tt.rate, got)
	}
}
