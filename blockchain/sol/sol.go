package sol

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

const (
	// fee for a transaction with one signature
	SOL_COMISSION = 5000

	LAMPORTS_PER_SOL = 1_000_000_000
)

var (
	ErrTxNotFound         = errors.New("sol: transaction not found")
	ErrMalformedSignature = errors.New("sol: malformed signature")
	ErrUnavailable        = errors.New("sol: rpc unavailable")
)

type Config struct {
	Rpc     string // empty - public endpoint
	Ws      string
	Testnet bool
	Timeout time.Duration
}

type Client struct {
	rpc     *rpc.Client
	wsUrl   string
	timeout time.Duration
}

func New(config Config) *Client {
	rpcUrl, wsUrl := config.Rpc, config.Ws

	if config.Testnet {
		if rpcUrl == "" {
			rpcUrl = rpc.TestNet_RPC
		}
		if wsUrl == "" {
			wsUrl = rpc.TestNet_WS
		}
	} else {
		if rpcUrl == "" {
			rpcUrl = rpc.MainNetBeta_RPC
		}
		if wsUrl == "" {
			wsUrl = rpc.MainNetBeta_WS
		}
	}

	if config.Timeout == 0 {
		config.Timeout = 20 * time.Second
	}

	return &Client{rpc: rpc.New(rpcUrl), wsUrl: wsUrl, timeout: config.Timeout}
}

func (c *Client) GetBalance(ctx context.Context, address string) (uint64, error) {
	pbc, err := StringToPBC(address)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	balance, err := c.rpc.GetBalance(ctx, pbc, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("%w: get balance: %v", ErrUnavailable, err)
	}

	return balance.Value, nil
}

func LamportsToSol(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Shift(-9)
}

// truncates below one lamport
func SolToLamports(sol decimal.Decimal) uint64 {
	if !sol.IsPositive() {
		return 0
	}
	return sol.Shift(9).Truncate(0).BigInt().Uint64()
}
