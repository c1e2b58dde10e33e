package natsdomain

import (
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

var ErrNotConnected = errors.New("nats: not connected")

// connection and jetstream context shared by publishers
type Ns struct {
	Nc *nats.Conn
	Js jetstream.JetStream
}

// false while reconnecting, publishing then only waits for the timeout
func (ns *Ns) Connected() bool {
	return ns != nil && ns.Nc != nil && ns.Js != nil && ns.Nc.IsConnected()
}
