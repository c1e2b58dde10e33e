package sol

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
)

type Transfer struct {
	From     string
	To       string
	Lamports uint64
}

// what a transaction did, reduced to what payment checks need
type TxEffects struct {
	Signature string
	Failed    bool

	// top level system transfers. transfers made by other programs
	// show up only in the balances
	Transfers []Transfer

	// indexes match PreBalances and PostBalances
	AccountKeys  []string
	PreBalances  []uint64
	PostBalances []uint64
}

// sum of decoded transfers to address
func (e *TxEffects) ReceivedByTransfers(address string) uint64 {
	var sum uint64
	for _, t := range e.Transfers {
		if t.To == address {
			sum += t.Lamports
		}
	}
	return sum
}

// post minus pre balance of address. ok=false if address is not in the transaction
func (e *TxEffects) BalanceDelta(address string) (delta int64, ok bool) {
	for i, key := range e.AccountKeys {
		if key != address {
			continue
		}
		if i >= len(e.PreBalances) || i >= len(e.PostBalances) {
			return 0, false
		}
		return int64(e.PostBalances[i]) - int64(e.PreBalances[i]), true
	}
	return 0, false
}

func (c *Client) GetTransaction(ctx context.Context, signature string) (*TxEffects, error) {
	txSig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	maxVersion := uint64(0)
	res, err := c.rpc.GetTransaction(
		ctx,
		txSig,
		&rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     rpc.CommitmentFinalized,
			MaxSupportedTransactionVersion: &maxVersion,
		},
	)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, ErrTxNotFound
		}
		return nil, fmt.Errorf("%w: get transaction: %v", ErrUnavailable, err)
	}
	if res == nil || res.Transaction == nil || res.Meta == nil {
		return nil, ErrTxNotFound
	}

	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("%w: decode transaction: %v", ErrUnavailable, err)
	}

	return ParseEffects(signature, tx, res.Meta), nil
}

func ParseEffects(signature string, tx *solana.Transaction, meta *rpc.TransactionMeta) *TxEffects {
	effects := &TxEffects{Signature: signature}

	keys := make([]solana.PublicKey, 0, len(tx.Message.AccountKeys))
	keys = append(keys, tx.Message.AccountKeys...)

	if meta != nil {
		effects.Failed = meta.Err != nil
		effects.PreBalances = meta.PreBalances
		effects.PostBalances = meta.PostBalances

		// v0 transactions: balances also cover accounts loaded from lookup tables
		keys = append(keys, meta.LoadedAddresses.Writable...)
		keys = append(keys, meta.LoadedAddresses.ReadOnly...)
	}

	for _, k := range keys {
		effects.AccountKeys = append(effects.AccountKeys, k.String())
	}

	for _, inst := range tx.Message.Instructions {
		transfer, ok := decodeTransfer(keys, inst)
		if ok {
			effects.Transfers = append(effects.Transfers, transfer)
		}
	}

	return effects
}

func decodeTransfer(keys []solana.PublicKey, inst solana.CompiledInstruction) (Transfer, bool) {
	if int(inst.ProgramIDIndex) >= len(keys) || !keys[inst.ProgramIDIndex].Equals(solana.SystemProgramID) {
		return Transfer{}, false
	}
	if len(inst.Accounts) < 2 {
		return Transfer{}, false
	}

	metas := make([]*solana.AccountMeta, 0, len(inst.Accounts))
	for _, idx := range inst.Accounts {
		if int(idx) >= len(keys) {
			return Transfer{}, false
		}
		metas = append(metas, solana.Meta(keys[idx]))
	}

	decoded, err := system.DecodeInstruction(metas, inst.Data)
	if err != nil {
		return Transfer{}, false
	}

	transfer, ok := decoded.Impl.(*system.Transfer)
	if !ok || transfer.Lamports == nil {
		return Transfer{}, false
	}

	return Transfer{
		From:     keys[inst.Accounts[0]].String(),
		To:       keys[inst.Accounts[1]].String(),
		Lamports: *transfer.Lamports,
	}, true
}
