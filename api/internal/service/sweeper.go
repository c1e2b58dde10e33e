package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/logger"
	"context"
	"errors"
	"fmt"
	"sync"
)

type SweepOutcome string

const (
	SWEEP_SWEPT       SweepOutcome = "swept"
	SWEEP_NOTHING     SweepOutcome = "nothing_to_sweep"
	SWEEP_IN_PROGRESS SweepOutcome = "in_progress"
	SWEEP_ERROR       SweepOutcome = "error"
)

// sessions fetched per page
const SWEEP_BATCH = 500

type SweepResult struct {
	SessionID string       `json:"session_id"`
	Outcome   SweepOutcome `json:"outcome"`
	Lamports  uint64       `json:"lamports,omitempty"`
	TxHash    string       `json:"tx_hash,omitempty"`
	Message   string       `json:"message,omitempty"`
}

type SweeperService struct {
	store       Sessions
	chain       Chain
	wallets     Wallets
	locker      Locker
	destination string
	fee         uint64
	workers     int
	l           logger.Logger
}

func NewSweeperService(store Sessions, chain Chain, wallets Wallets, locker Locker, destination string, fee uint64, workers int, l logger.Logger) *SweeperService {
	if workers < 1 {
		workers = 1
	}
	return &SweeperService{store: store, chain: chain, wallets: wallets, locker: locker, destination: destination, fee: fee, workers: workers, l: l}
}

// SweepAll moves funds of every paid and unswept session to the operator
// wallet. Sessions are independent: one failing never stops the batch.
// Sessions are paged by id so each one is visited at most once per run.
// Results keep the order of the selected sessions.
func (s *SweeperService) SweepAll(ctx context.Context) ([]SweepResult, error) {
	if s.destination == "" {
		return nil, fmt.Errorf("%w: operator wallet is not configured", domain.ErrInternal)
	}

	results := []SweepResult{}
	var afterId uint
	for {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		page, err := s.store.ListUnswept(ctx, afterId, SWEEP_BATCH)
		if err != nil {
			return results, fmt.Errorf("list unswept: %w", err)
		}

		results = append(results, s.sweepPage(ctx, page)...)

		if len(page) < SWEEP_BATCH {
			return results, nil
		}
		afterId = page[len(page)-1].ID
	}
}

func (s *SweeperService) sweepPage(ctx context.Context, sessions []domain.PaymentSessions) []SweepResult {
	results := make([]SweepResult, len(sessions))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range min(s.workers, len(sessions)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.sweepOne(ctx, sessions[i].SessionID)
			}
		}()
	}

	for i := range sessions {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func lockKey(sessionId string) string {
	return "sweep:" + sessionId
}

func (s *SweeperService) sweepOne(ctx context.Context, sessionId string) SweepResult {
	result := SweepResult{SessionID: sessionId}

	token, ok, err := s.locker.TryLock(ctx, lockKey(sessionId))
	if err != nil {
		return s.failed(result, logger.NA, fmt.Errorf("lock: %w", err))
	}
	if !ok {
		result.Outcome = SWEEP_IN_PROGRESS
		result.Message = domain.ErrSweepInProgress.Error()
		return result
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), lockKey(sessionId), token); err != nil {
			s.l.TemplSweepErr("unlock error", sessionId, logger.NA, err)
		}
	}()

	// re-read under the lock, a previous holder may have finished
	session, err := s.store.Get(ctx, sessionId)
	if err != nil {
		return s.failed(result, logger.NA, err)
	}
	if session.Swept {
		result.Outcome = SWEEP_SWEPT
		result.TxHash = session.SweepTx
		return result
	}

	key, err := s.wallets.Open(session.CustodialSecret, session.ReceivingAddress)
	if err != nil {
		return s.failed(result, session.ReceivingAddress, err)
	}

	balance, err := s.chain.GetBalance(ctx, session.ReceivingAddress)
	if err != nil {
		return s.failed(result, session.ReceivingAddress, err)
	}

	if balance <= s.fee {
		result.Outcome = SWEEP_NOTHING
		result.Lamports = balance
		result.Message = domain.ErrNothingToSweep.Error()
		return result
	}

	amount := balance - s.fee
	txHash, err := s.chain.Transfer(ctx, key, s.destination, amount)
	if err != nil {
		return s.failed(result, session.ReceivingAddress, err)
	}

	if _, err := s.store.MarkSwept(context.WithoutCancel(ctx), sessionId, txHash); err != nil {
		// funds moved, only the flag is missing. the next run sees a balance
		// at or below the fee and reports nothing to sweep
		result.TxHash = txHash
		return s.failed(result, session.ReceivingAddress, fmt.Errorf("mark swept: %w", err))
	}

	s.l.TemplSweepInfo("swept", sessionId, session.ReceivingAddress, amount, txHash)

	result.Outcome = SWEEP_SWEPT
	result.Lamports = amount
	result.TxHash = txHash
	return result
}

func (s *SweeperService) failed(result SweepResult, address string, err error) SweepResult {
	s.l.TemplSweepErr("sweep error", result.SessionID, address, err)

	result.Outcome = SWEEP_ERROR
	result.Message = err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		result.Message = "timeout: " + result.Message
	}
	return result
}
