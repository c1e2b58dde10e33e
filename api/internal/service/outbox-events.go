package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"checkout/api/internal/repository"
	"checkout/pkg/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	eventsPerTick = 20

	// attempts after which an event is marked failed and no longer retried
	maxEventAttempts = 10

	// a row younger than this may belong to a transaction that is still open
	eventMinAge = time.Second
)

// OutboxEventsService delivers order_paid events written next to the paid
// transition. Delivery failures leave the event new for the next tick until
// maxEventAttempts is reached, and never touch payment state.
type OutboxEventsService struct {
	repo       repository.Events
	publisher  Publisher // nil if nats is disabled
	webhook    WebhookSender
	webhookUrl string
	every      time.Duration
	db         *gorm.DB
	l          logger.Logger
	now        func() time.Time
}

func NewOutboxEventsService(db *gorm.DB, repo repository.Events, publisher Publisher, webhook WebhookSender, webhookUrl string, every time.Duration, l logger.Logger) *OutboxEventsService {
	return &OutboxEventsService{db: db, repo: repo, publisher: publisher, webhook: webhook, webhookUrl: webhookUrl, every: every, l: l, now: time.Now}
}

func (s *OutboxEventsService) StartProcessEvents(ctx context.Context) {
	if s.publisher == nil && s.webhookUrl == "" {
		s.l.Info("no notification sinks configured, outbox is idle", logger.LS_WEBHOOKS, false)
		return
	}

	go func() {
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.ProcessOnce(ctx); err != nil {
					s.l.Error("process events error: "+err.Error(), logger.LS_WEBHOOKS, false)
				}
			}
		}
	}()
}

// returns the number of events delivered
func (s *OutboxEventsService) ProcessOnce(ctx context.Context) (int, error) {
	events, err := getNewEvents(s.db.WithContext(ctx), s.repo, eventsPerTick, eventMinAge, s.now())
	if err != nil {
		return 0, err
	}

	var delivered int
	for _, event := range events {
		switch event.Type {
		case domain.EVENT_ORDER_PAID:
			err = s.handleOrderPaid(ctx, event)
		default:
			err = fmt.Errorf("invalid event type: %s", event.Type)
		}

		if err != nil {
			s.l.Error("event "+event.Type+" "+event.RelationID+": "+err.Error(), logger.LS_WEBHOOKS, false)
			if err := s.repo.Failed(s.db.WithContext(ctx), event.ID, maxEventAttempts); err != nil {
				return delivered, err
			}
			continue
		}

		if err := s.repo.Done(s.db.WithContext(ctx), event.ID); err != nil {
			return delivered, err
		}
		delivered++
	}

	return delivered, nil
}

func (s *OutboxEventsService) handleOrderPaid(ctx context.Context, event domain.Events) error {
	payload, err := utils.Unmarshal[domain.PayloadOrderPaid](event.Payload)
	if err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPaid(ctx, *payload); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}

	if s.webhookUrl != "" {
		// nats dedups by message id, a redelivered webhook is skipped by the sender
		if err := s.webhook.Send(s.webhookUrl, *payload); err != nil && !errors.Is(err, errWebhookAlreadySent) {
			return fmt.Errorf("webhook: %w", err)
		}
	}

	return nil
}

func getNewEvents(tx *gorm.DB, repo repository.Events, count int, minAge time.Duration, now time.Time) ([]domain.Events, error) {
	events, err := repo.FindNew(tx, count)
	if err != nil {
		return nil, err
	}

	var valid []domain.Events
	for _, x := range events {
		if now.Sub(x.CreatedAt) >= minAge {
			valid = append(valid, x)
		}
	}

	return valid, nil
}
