package natsdomain

type ActionType string

const (
	// api -> subscribers
	MsgActionOrderPaid ActionType = "order_paid"
)

// .js. - jetstream
var SubjectsJetStream = [...]string{"orders.js.paid"}

const OrdersStream = "orders"

type SubjJsType uint8

// nats jetstream subjects
const (
	SubjJsOrderPaid SubjJsType = iota
)

func (s SubjJsType) String() string {
	return SubjectsJetStream[s]
}
