package nats

import (
	"checkout/api/internal/domain"
	"checkout/pkg/nats/natsdomain"
	"context"
	"encoding/json"
	"fmt"
)

// publishes an order_paid outbox payload. a redelivered event keeps the
// same msg id, so subscribers see it once
func (n *NatsInfra) PublishOrderPaid(ctx context.Context, payload domain.PayloadOrderPaid) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	err = n.JsPublishMsgId(ctx, natsdomain.SubjJsOrderPaid.String(), data, natsdomain.NewMsgId(payload.SessionID, natsdomain.MsgActionOrderPaid))
	if err != nil {
		return fmt.Errorf("publish error: %w", err)
	}
	return nil
}
