package service

import (
	"checkout/blockchain/sol"

	"github.com/shopspring/decimal"
)

type ReceiptMethod string

const (
	ReceiptNone             ReceiptMethod = "none"
	ReceiptFromEffects      ReceiptMethod = "effects"
	ReceiptFromBalanceDelta ReceiptMethod = "balance_delta"
)

// amount a transaction delivered to one address and how it was measured
type Receipt struct {
	Method   ReceiptMethod
	Lamports uint64
	Amount   decimal.Decimal
}

func newReceipt(method ReceiptMethod, lamports uint64) Receipt {
	return Receipt{Method: method, Lamports: lamports, Amount: sol.LamportsToSol(lamports)}
}

// MeasureReceipt sums decoded transfers to address first. When none of the
// instructions decode into a credit for address it falls back to the
// account's balance delta; a negative delta counts as nothing received.
func MeasureReceipt(effects *sol.TxEffects, address string) Receipt {
	if receipt, ok := receiptFromEffects(effects, address); ok {
		return receipt
	}
	if receipt, ok := receiptFromBalanceDelta(effects, address); ok {
		return receipt
	}
	return newReceipt(ReceiptNone, 0)
}

func receiptFromEffects(effects *sol.TxEffects, address string) (Receipt, bool) {
	lamports := effects.ReceivedByTransfers(address)
	if lamports == 0 {
		return Receipt{}, false
	}
	return newReceipt(ReceiptFromEffects, lamports), true
}

func receiptFromBalanceDelta(effects *sol.TxEffects, address string) (Receipt, bool) {
	delta, ok := effects.BalanceDelta(address)
	if !ok {
		return Receipt{}, false
	}
	if delta <= 0 {
		return newReceipt(ReceiptFromBalanceDelta, 0), true
	}
	return newReceipt(ReceiptFromBalanceDelta, uint64(delta)), true
}
