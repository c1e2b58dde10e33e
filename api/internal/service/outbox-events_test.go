package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"checkout/pkg/utils"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memEvents struct {
	mu     sync.Mutex
	events []domain.Events
}

func (m *memEvents) Create(_ *gorm.DB, eventType string, relationID string, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, domain.Events{ID: uint(len(m.events) + 1), Type: eventType, RelationID: relationID, Payload: payload, Status: domain.EVENT_STATUS_NEW, CreatedAt: time.Now().Add(-time.Minute)})
	return nil
}

func (m *memEvents) FindNew(_ *gorm.DB, limit int) ([]domain.Events, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Events
	for _, e := range m.events {
		if e.Status == domain.EVENT_STATUS_NEW {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Attempts < out[j].Attempts })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memEvents) Done(_ *gorm.DB, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[id-1].Status = domain.EVENT_STATUS_DONE
	return nil
}

func (m *memEvents) Failed(_ *gorm.DB, id uint, maxAttempts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[id-1].Attempts++
	if m.events[id-1].Attempts >= maxAttempts {
		m.events[id-1].Status = domain.EVENT_STATUS_FAILED
	}
	return nil
}

type fakePublisher struct {
	published []domain.PayloadOrderPaid
	err       error
}

func (p *fakePublisher) PublishOrderPaid(_ context.Context, payload domain.PayloadOrderPaid) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

func orderPaidPayload(sessionId string) string {
	return utils.MarshalString(domain.PayloadOrderPaid{SessionID: sessionId, OrderNumber: 1001, Amount: "1", AmountReceived: "1", TxReference: "sig"})
}

func TestOutboxProcessOnce(t *testing.T) {
	db, _ := setupMockDB(t)
	events := &memEvents{}
	publisher := &fakePublisher{}

	require.NoError(t, events.Create(nil, domain.EVENT_ORDER_PAID, "s1", orderPaidPayload("s1")))
	require.NoError(t, events.Create(nil, domain.EVENT_ORDER_PAID, "s2", orderPaidPayload("s2")))
	require.NoError(t, events.Create(nil, "unknown", "s3", `{}`))

	s := NewOutboxEventsService(db, events, publisher, nil, "", time.Second, logger.Logger{})

	delivered, err := s.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
	require.Len(t, publisher.published, 2)
	assert.Equal(t, int64(1001), publisher.published[0].OrderNumber)

	assert.Equal(t, domain.EVENT_STATUS_DONE, events.events[0].Status)
	assert.Equal(t, domain.EVENT_STATUS_NEW, events.events[2].Status)
	assert.Equal(t, 1, events.events[2].Attempts)

	// delivered events are not picked up again
	delivered, err = s.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	assert.Len(t, publisher.published, 2)
}

func TestOutboxPublishFailureKeepsEvent(t *testing.T) {
	db, _ := setupMockDB(t)
	events := &memEvents{}
	publisher := &fakePublisher{err: errors.New("nats: timeout")}

	require.NoError(t, events.Create(nil, domain.EVENT_ORDER_PAID, "s1", orderPaidPayload("s1")))

	s := NewOutboxEventsService(db, events, publisher, nil, "", time.Second, logger.Logger{})

	delivered, err := s.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	assert.Equal(t, domain.EVENT_STATUS_NEW, events.events[0].Status)

	publisher.err = nil
	delivered, err = s.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestOutboxFailingEventsDoNotBlockQueue(t *testing.T) {
	db, _ := setupMockDB(t)
	events := &memEvents{}
	publisher := &fakePublisher{}

	bad := eventsPerTick + 5
	for i := range bad {
		require.NoError(t, events.Create(nil, "unknown", fmt.Sprintf("bad-%d", i), `{}`))
	}
	require.NoError(t, events.Create(nil, domain.EVENT_ORDER_PAID, "good", orderPaidPayload("good")))

	s := NewOutboxEventsService(db, events, publisher, nil, "", time.Second, logger.Logger{})

	// the first tick fills up with broken rows, the second one reaches the good event
	for range 2 {
		_, err := s.ProcessOnce(context.Background())
		require.NoError(t, err)
	}
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "good", publisher.published[0].SessionID)
	assert.Equal(t, domain.EVENT_STATUS_DONE, events.events[bad].Status)

	for range maxEventAttempts * 2 {
		_, err := s.ProcessOnce(context.Background())
		require.NoError(t, err)
	}

	for _, e := range events.events[:bad] {
		assert.Equal(t, domain.EVENT_STATUS_FAILED, e.Status)
		assert.Equal(t, maxEventAttempts, e.Attempts)
	}

	pending, err := events.FindNew(nil, eventsPerTick)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGetNewEventsSkipsFresh(t *testing.T) {
	events := &memEvents{}
	require.NoError(t, events.Create(nil, domain.EVENT_ORDER_PAID, "s1", orderPaidPayload("s1")))
	events.events[0].CreatedAt = time.Now()

	got, err := getNewEvents(nil, events, 10, time.Minute, time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}
