package natsdomain

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"
)

func (ns *Ns) JsPublish(ctx context.Context, subj string, jsonMsg []byte) error {
	return ns.jsPublishOpts(ctx, subj, jsonMsg)
}

// jetstream publish with msgId. the stream drops duplicates inside its dedup window
func (ns *Ns) JsPublishMsgId(ctx context.Context, subj string, jsonMsg []byte, msgId string) error {
	return ns.jsPublishOpts(ctx, subj, jsonMsg, jetstream.WithMsgID(msgId))
}

func (ns *Ns) jsPublishOpts(ctx context.Context, subj string, jsonMsg []byte, opts ...jetstream.PublishOpt) error {
	if !ns.Connected() {
		return ErrNotConnected
	}

	_, err := ns.Js.Publish(ctx, subj, jsonMsg, opts...)
	if err != nil {
		return err
	}
	return nil
}

// for nats jetstream
func NewMsgId(sessionId string, action ActionType) string {
	return sessionId + "_" + string(action)
}
