package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	confirm "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

// builds and signs a transfer of exactly amountLamports. the fee is paid by from on top
func CreateTx(recent solana.Hash, amountLamports uint64, from solana.PrivateKey, to solana.PublicKey) (*solana.Transaction, string, error) {
	if amountLamports == 0 {
		return nil, "", fmt.Errorf("amountLamports == 0")
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(
				amountLamports,
				from.PublicKey(),
				to,
			).Build(),
		},
		recent,
		solana.TransactionPayer(from.PublicKey()),
	)
	if err != nil {
		return nil, "", err
	}

	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			if from.PublicKey().Equals(key) {
				return &from
			}
			return nil
		},
	)
	if err != nil {
		return nil, "", err
	}

	// tx.Signatures[0].String() - tx hash
	if len(tx.Signatures) == 0 {
		return nil, "", fmt.Errorf("tx.Signatures is empty")
	}

	return tx, tx.Signatures[0].String(), nil
}

// sends amountLamports from the key owner to the address and waits for confirmation.
// the whole call, confirmation included, is bounded by the client timeout
func (c *Client) Transfer(ctx context.Context, from solana.PrivateKey, to string, amountLamports uint64) (string, error) {
	toPbc, err := StringToPBC(to)
	if err != nil {
		return "", fmt.Errorf("invalid destination: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("%w: latest blockhash: %v", ErrUnavailable, err)
	}

	tx, hash, err := CreateTx(recent.Value.Blockhash, amountLamports, from, toPbc)
	if err != nil {
		return "", err
	}

	wsClient, err := ws.Connect(ctx, c.wsUrl)
	if err != nil {
		return "", fmt.Errorf("%w: ws connect: %v", ErrUnavailable, err)
	}
	defer wsClient.Close()

	sig, err := confirm.SendAndConfirmTransactionWithTimeout(ctx, c.rpc, wsClient, tx, c.timeout)
	if err != nil {
		return hash, fmt.Errorf("send and confirm %s: %w", hash, err)
	}

	return sig.String(), nil
}
