package service

import (
	"checkout/api/internal/domain"
	"checkout/blockchain/sol"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newHexKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return hex.EncodeToString(key)
}

func newWallets(t *testing.T) *WalletsService {
	t.Helper()
	secrets, err := NewSecretsService(newHexKey(t))
	require.NoError(t, err)
	return NewWalletsService(secrets)
}

// memStore keeps the Sessions contract in memory: the paid transition is a
// compare-and-set under one mutex
type memStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.PaymentSessions
	refs     map[string]string
	now      func() time.Time
	nextId   uint
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*domain.PaymentSessions{}, refs: map[string]string{}, now: time.Now}
}

func (m *memStore) Create(_ context.Context, payerContact string, requestedAmount decimal.Decimal, address string, sealedSecret string, ttl time.Duration) (*domain.PaymentSessions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.nextId++
	session := &domain.PaymentSessions{
		ID:               m.nextId,
		SessionID:        uuid.NewString(),
		PayerContact:     payerContact,
		RequestedAmount:  requestedAmount,
		ReceivingAddress: address,
		CustodialSecret:  sealedSecret,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}
	m.sessions[session.SessionID] = session

	cp := *session
	return &cp, nil
}

func (m *memStore) Get(_ context.Context, sessionId string) (*domain.PaymentSessions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionId]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpiredAt(m.now()) {
		session.Status = domain.STATUS_EXPIRED
	}

	cp := *session
	return &cp, nil
}

func (m *memStore) TransitionToPaid(_ context.Context, sessionId string, txReference string, receipt Receipt) (*domain.PaymentSessions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionId]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	switch session.EffectiveStatus(m.now()) {
	case domain.STATUS_PAID:
		cp := *session
		return &cp, domain.ErrAlreadyPaid
	case domain.STATUS_EXPIRED:
		return nil, domain.ErrSessionExpired
	}

	if owner, used := m.refs[txReference]; used && owner != sessionId {
		return nil, domain.ErrTxAlreadyUsed
	}

	paidAt := m.now()
	ref := txReference
	session.Status = domain.STATUS_PAID
	session.TxReference = &ref
	session.AmountReceived = receipt.Amount
	session.ReceiptMethod = string(receipt.Method)
	session.PaidAt = &paidAt
	m.refs[txReference] = sessionId

	cp := *session
	return &cp, nil
}

func (m *memStore) MarkSwept(_ context.Context, sessionId string, sweepTx string) (*domain.PaymentSessions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionId]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !session.Swept {
		now := m.now()
		session.Swept = true
		session.SweepTx = sweepTx
		session.SweptAt = &now
	}

	cp := *session
	return &cp, nil
}

func (m *memStore) ListUnswept(_ context.Context, afterId uint, limit int) ([]domain.PaymentSessions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.PaymentSessions
	for _, session := range m.sessions {
		if session.Status.IsPaid() && !session.Swept && session.ID > afterId {
			out = append(out, *session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ExpireStale(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, session := range m.sessions {
		if session.Status.IsPending() && session.IsExpiredAt(m.now()) {
			session.Status = domain.STATUS_EXPIRED
			n++
		}
	}
	return n, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *memStore) put(session *domain.PaymentSessions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.ID == 0 {
		m.nextId++
		session.ID = m.nextId
	}
	m.sessions[session.SessionID] = session
}

type transferCall struct {
	From     string
	To       string
	Lamports uint64
}

type fakeChain struct {
	mu          sync.Mutex
	txs         map[string]*sol.TxEffects
	txErr       error
	balances    map[string]uint64
	balanceErr  map[string]error
	transfers   []transferCall
	transferErr error
	queried     []string
}

func newFakeChain() *fakeChain {
	return &fakeChain{txs: map[string]*sol.TxEffects{}, balances: map[string]uint64{}, balanceErr: map[string]error{}}
}

func (c *fakeChain) GetTransaction(_ context.Context, signature string) (*sol.TxEffects, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queried = append(c.queried, signature)
	if c.txErr != nil {
		return nil, c.txErr
	}
	effects, ok := c.txs[signature]
	if !ok {
		return nil, sol.ErrTxNotFound
	}
	return effects, nil
}

func (c *fakeChain) GetBalance(_ context.Context, address string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.balanceErr[address]; err != nil {
		return 0, err
	}
	return c.balances[address], nil
}

func (c *fakeChain) Transfer(_ context.Context, from solana.PrivateKey, to string, amountLamports uint64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transferErr != nil {
		return "", c.transferErr
	}

	address := from.PublicKey().String()
	c.transfers = append(c.transfers, transferCall{From: address, To: to, Lamports: amountLamports})
	c.balances[address] -= amountLamports + sol.SOL_COMISSION
	return fmt.Sprintf("sweep-%d", len(c.transfers)), nil
}

// a confirmed transaction paying lamports to address with a system transfer
func transferTx(signature string, address string, lamports uint64) *sol.TxEffects {
	return &sol.TxEffects{
		Signature:    signature,
		Transfers:    []sol.Transfer{{From: "payer", To: address, Lamports: lamports}},
		AccountKeys:  []string{"payer", address},
		PreBalances:  []uint64{10 * sol.LAMPORTS_PER_SOL, 0},
		PostBalances: []uint64{10*sol.LAMPORTS_PER_SOL - lamports - sol.SOL_COMISSION, lamports},
	}
}

func sol4(s string) uint64 {
	return sol.SolToLamports(decimal.RequireFromString(s))
}
