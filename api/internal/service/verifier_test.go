package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"checkout/blockchain/sol"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sigA = "5h6xBEauJ3PK6SWCZ1PGjBvj8vDdWG3KpwATGy1ARAXFSDwt8GFXM7W5Ncn16wmqokgpiKRLuS83KUxyZyv2sUYv"
	sigB = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T2qsMdhB3dh7x3QQBhvZsRxLVNpHXo3RHYMhSrCL5RXu1"
)

var tolerance = decimal.RequireFromString("0.01")

type verifierFixture struct {
	store    *memStore
	chain    *fakeChain
	verifier *VerifierService
	session  *domain.PaymentSessions
}

func newVerifierFixture(t *testing.T, requested string) *verifierFixture {
	t.Helper()

	store := newMemStore()
	chain := newFakeChain()

	address, _, err := sol.NewWallet()
	require.NoError(t, err)

	session, err := store.Create(context.Background(), gofakeit.Email(), decimal.RequireFromString(requested), address, "sealed", 30*time.Minute)
	require.NoError(t, err)

	return &verifierFixture{
		store:    store,
		chain:    chain,
		verifier: NewVerifierService(store, chain, tolerance, logger.Logger{}),
		session:  session,
	}
}

func TestNormalizeReference(t *testing.T) {
	tests := []struct {
		input string
		want  string
		err   bool
	}{
		{input: sigA, want: sigA},
		{input: "  " + sigA + "\n", want: sigA},
		{input: "https://solscan.io/tx/" + sigA, want: sigA},
		{input: "https://solscan.io/tx/" + sigA + "?cluster=devnet", want: sigA},
		{input: "https://explorer.solana.com/tx/" + sigA + "?cluster=testnet", want: sigA},
		{input: "solana.fm/tx/" + sigA, want: sigA},
		{input: "https://solscan.io/tx/abc123", want: "abc123"},
		{input: "abc123", want: "abc123"},
		{input: "", err: true},
		{input: "https://solscan.io/account/" + sigA, err: true},
		{input: "https://example.com/tx/" + sigA, err: true},
		{input: "0OIl", err: true},
		{input: "sig with spaces", err: true},
	}

	for _, tt := range tests {
		got, err := NormalizeReference(tt.input)
		if tt.err {
			assert.ErrorIs(t, err, domain.ErrMalformedReference, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestVerifyWithinTolerance(t *testing.T) {
	f := newVerifierFixture(t, "2.0")
	f.chain.txs[sigA] = transferTx(sigA, f.session.ReceivingAddress, sol4("1.995"))

	res, err := f.verifier.Verify(context.Background(), f.session.SessionID, sigA)
	require.NoError(t, err)

	assert.True(t, res.Accepted)
	assert.False(t, res.AlreadyPaid)
	assert.Equal(t, ReceiptFromEffects, res.Method)
	assert.True(t, res.AmountReceived.Equal(decimal.RequireFromString("1.995")))
	assert.Equal(t, sigA, res.TxReference)

	stored, err := f.store.Get(context.Background(), f.session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PAID, stored.Status)
	assert.NotNil(t, stored.PaidAt)
}

func TestVerifyShortfall(t *testing.T) {
	f := newVerifierFixture(t, "2.0")
	f.chain.txs[sigA] = transferTx(sigA, f.session.ReceivingAddress, sol4("1.98"))

	res, err := f.verifier.Verify(context.Background(), f.session.SessionID, sigA)
	assert.Nil(t, res)
	require.ErrorIs(t, err, domain.ErrInsufficientAmount)

	var shortfall *domain.ShortfallError
	require.True(t, errors.As(err, &shortfall))
	assert.True(t, shortfall.Shortfall.Equal(decimal.RequireFromString("0.01")), shortfall.Shortfall.String())

	stored, err := f.store.Get(context.Background(), f.session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PENDING, stored.Status)
	assert.Nil(t, stored.TxReference)

	// a top-up transaction can still settle it
	f.chain.txs[sigB] = transferTx(sigB, f.session.ReceivingAddress, sol4("2.0"))
	res, err = f.verifier.Verify(context.Background(), f.session.SessionID, sigB)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestVerifyExactThreshold(t *testing.T) {
	f := newVerifierFixture(t, "2.0")
	f.chain.txs[sigA] = transferTx(sigA, f.session.ReceivingAddress, sol4("1.99"))

	res, err := f.verifier.Verify(context.Background(), f.session.SessionID, sigA)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestVerifyExpired(t *testing.T) {
	f := newVerifierFixture(t, "2.0")
	f.chain.txs[sigA] = transferTx(sigA, f.session.ReceivingAddress, sol4("2.0"))

	later := time.Now().Add(31 * time.Minute)
	f.store.now = func() time.Time { return later }
	f.verifier.now = func() time.Time { return later }

	_, err := f.verifier.Verify(context.Background(), f.session.SessionID, sigA)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Empty(t, f.chain.queried)
}

func TestVerifyIdempotent(t *testing.T) {
	f := newVerifierFixture(t, "1.5")
	f.chain.txs[sigA] = transferTx(sigA, f.session.ReceivingAddress, sol4("1.5"))

	first, err := f.verifier.Verify(context.Background(), f.session.SessionID, sigA)
	require.NoError(t, err)

	second, err := f.verifier.Verify(context.Background(), f.session.SessionID, "https://solscan.io/tx/"+sigA)
	require.NoError(t, err)

	assert.True(t, second.AlreadyPaid)
	assert.True(t, first.AmountReceived.Equal(second.AmountReceived))
	assert.Equal(t, first.TxReference, second.TxReference)
	assert.Len(t, f.chain.queried, 1)
}

func TestVerifyConcurrentOneWinner(t *testing.T) {
	f := newVerifierFixture(t, "1.0")
	f.chain.txs[sigA] = transferTx(sigA, f.session.ReceivingAddress, sol4("1.0"))
	f.chain.txs[sigB] = transferTx(sigB, f.session.ReceivingAddress, sol4("1.0"))

	var wg sync.WaitGroup
	results := make([]*VerifyResult, 2)
	for i, sig := range []string{sigA, sigB} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.verifier.Verify(context.Background(), f.session.SessionID, sig)
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	stored, err := f.store.Get(context.Background(), f.session.SessionID)
	require.NoError(t, err)

	var winners int
	for _, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, stored.TxRef(), res.TxReference)
		if !res.AlreadyPaid {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestVerifyExplorerUrlQueriesBareId(t *testing.T) {
	f := newVerifierFixture(t, "1.0")

	_, err := f.verifier.Verify(context.Background(), f.session.SessionID, "https://solscan.io/tx/abc123")
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
	assert.Equal(t, []string{"abc123"}, f.chain.queried)

	category, retryable := domain.Categorize(err)
	assert.Equal(t, domain.CATEGORY_NOTFOUND, category)
	assert.True(t, retryable)
}

func TestVerifyErrors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *verifierFixture) (sessionId, ref string)
		want    error
	}{
		{
			name: "session not found",
			prepare: func(f *verifierFixture) (string, string) {
				return gofakeit.UUID(), sigA
			},
			want: domain.ErrSessionNotFound,
		},
		{
			name: "malformed reference",
			prepare: func(f *verifierFixture) (string, string) {
				return f.session.SessionID, "not a tx"
			},
			want: domain.ErrMalformedReference,
		},
		{
			name: "signature rejected by chain client",
			prepare: func(f *verifierFixture) (string, string) {
				f.chain.txErr = sol.ErrMalformedSignature
				return f.session.SessionID, "abc123"
			},
			want: domain.ErrMalformedReference,
		},
		{
			name: "chain unavailable",
			prepare: func(f *verifierFixture) (string, string) {
				f.chain.txErr = sol.ErrUnavailable
				return f.session.SessionID, sigA
			},
			want: domain.ErrChainUnavailable,
		},
		{
			name: "failed on chain",
			prepare: func(f *verifierFixture) (string, string) {
				tx := transferTx(sigA, f.session.ReceivingAddress, sol4("1.0"))
				tx.Failed = true
				f.chain.txs[sigA] = tx
				return f.session.SessionID, sigA
			},
			want: domain.ErrTransactionFailed,
		},
		{
			name: "paid to another address",
			prepare: func(f *verifierFixture) (string, string) {
				f.chain.txs[sigA] = transferTx(sigA, "someone-else", sol4("1.0"))
				return f.session.SessionID, sigA
			},
			want: domain.ErrInsufficientAmount,
		},
		{
			name: "transaction already credited to another session",
			prepare: func(f *verifierFixture) (string, string) {
				f.chain.txs[sigA] = transferTx(sigA, f.session.ReceivingAddress, sol4("1.0"))
				f.store.refs[sigA] = gofakeit.UUID()
				return f.session.SessionID, sigA
			},
			want: domain.ErrTxAlreadyUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVerifierFixture(t, "1.0")
			sessionId, ref := tt.prepare(f)

			res, err := f.verifier.Verify(context.Background(), sessionId, ref)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)

			stored, err := f.store.Get(context.Background(), f.session.SessionID)
			require.NoError(t, err)
			assert.Equal(t, domain.STATUS_PENDING, stored.Status)
		})
	}
}
