package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/evetabi/slot/internal/config"
	"github.com/evetabi/slot/internal/domain"
	"github.com/evetabi/slot/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Interfaces injected into SpinService
// ──────────────────────────────────────────────────────────────────────────────

// GridSource produces one random grid per call. Implemented by reel.Generator.
type GridSource interface {
	Generate() domain.Grid
}

// Broadcaster is the minimal interface SpinService needs from the WS hub.
// Implemented by ws.Hub.
type Broadcaster interface {
	BroadcastWin(win domain.RecentWin, jackpot bool)
}

// ──────────────────────────────────────────────────────────────────────────────
// SpinService
// ──────────────────────────────────────────────────────────────────────────────

// SpinService resolves spins: validate the stake, then debit, roll, price and
// credit under the wallet's ledger lock, then update the shared feed.
type SpinService struct {
	ledger      *repository.Ledger
	grids       GridSource
	catalog     *domain.Catalog
	journal     repository.Journal
	cfg         *config.Config
	logger      *slog.Logger
	broadcaster Broadcaster // injected after WS Hub is built
	now         func() time.Time
}

// NewSpinService creates a SpinService. A nil journal disables auditing.
// journal.Append is called on the request path after settlement.
func NewSpinService(
	ledger *repository.Ledger,
	grids GridSource,
	catalog *domain.Catalog,
	journal repository.Journal,
	cfg *config.Config,
	logger *slog.Logger,
) *SpinService {
	if journal == nil {
		journal = repository.NoopJournal{}
	}
	return &SpinService{
		ledger:  ledger,
		grids:   grids,
		catalog: catalog,
		journal: journal,
		cfg:     cfg,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *SpinService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// ──────────────────────────────────────────────────────────────────────────────
// Spin
// ──────────────────────────────────────────────────────────────────────────────

// Spin resolves one spin for req.Wallet (the default wallet when empty).
//
// Returns ErrInvalidBet if the bet is outside [MinBet, MaxBet] and
// ErrInsufficientBalance if the wallet cannot cover it; both leave every
// balance, the feed and the pool counters untouched. Any other failure is
// logged and reported as ErrInternal after the debit has been rolled back.
func (s *SpinService) Spin(ctx context.Context, req domain.SpinRequest) (*domain.SpinOutcome, error) {
	wallet := s.walletOrDefault(req.Wallet)

	// ── 1. Validate ──────────────────────────────────────────────────────────
	if req.Bet.LessThan(s.cfg.Game.MinBet) || req.Bet.GreaterThan(s.cfg.Game.MaxBet) {
		return nil, domain.ErrInvalidBet
	}

	// ── 2. Resolve under the wallet lock ─────────────────────────────────────
	var result domain.SpinResult
	settlement, err := s.ledger.Transact(wallet, req.Bet, func() (decimal.Decimal, error) {
		grid := s.grids.Generate()
		lines := domain.EvaluatePaylines(grid)
		payout, err := s.catalog.CalculatePayout(grid, lines, req.Bet)
		if err != nil {
			return decimal.Zero, err
		}
		result = domain.SpinResult{
			Reels:        grid,
			WinningLines: lines,
			WinAmount:    payout.Amount,
			Multiplier:   payout.Multiplier,
			IsJackpot:    payout.IsJackpot,
		}
		return payout.Amount, nil
	})
	if err != nil {
		if domain.IsUserError(err) {
			return nil, err
		}
		s.logger.Error("spin failed, debit rolled back",
			"wallet", wallet, "bet", req.Bet, "err", err)
		return nil, domain.ErrInternal
	}

	// ── 3. Settle shared state ───────────────────────────────────────────────
	now := s.now()
	s.ledger.AccrueVolume(req.Bet)
	if result.WinAmount.IsPositive() {
		win := s.ledger.RecordWin(domain.RecentWin{
			ID:      uuid.New(),
			Address: domain.MaskWallet(wallet),
			Amount:  result.WinAmount,
			Symbol:  result.WinSymbol(),
		})
		if s.broadcaster != nil {
			s.broadcaster.BroadcastWin(win, result.IsJackpot)
		}
	}

	// ── 4. Audit ─────────────────────────────────────────────────────────────
	s.appendJournal(ctx, wallet, req.Bet, &result, settlement, now)

	if result.IsJackpot {
		s.logger.Info("jackpot", "wallet", wallet, "bet", req.Bet,
			"win", result.WinAmount, "multiplier", result.Multiplier)
	} else {
		s.logger.Debug("spin settled", "wallet", wallet, "bet", req.Bet,
			"win", result.WinAmount, "lines", result.WinningLines)
	}

	return &domain.SpinOutcome{Result: result, Balance: settlement.BalanceAfter}, nil
}

// appendJournal hands the audit record to the journal. The credit is already
// committed, so failures are logged and never returned. The journal must not
// block: production wiring puts a repository.JournalWriter in front of the
// database.
func (s *SpinService) appendJournal(
	ctx context.Context,
	wallet string,
	bet decimal.Decimal,
	result *domain.SpinResult,
	settlement repository.Settlement,
	at time.Time,
) {
	rec, err := newSpinRecord(wallet, bet, result, settlement, at)
	if err != nil {
		s.logger.Warn("spin journal: encode", "wallet", wallet, "err", err)
		return
	}

	if err := s.journal.Append(ctx, rec); err != nil {
		s.logger.Warn("spin journal: append", "wallet", wallet, "spin_id", rec.ID, "err", err)
	}
}

func newSpinRecord(
	wallet string,
	bet decimal.Decimal,
	result *domain.SpinResult,
	settlement repository.Settlement,
	at time.Time,
) (*domain.SpinRecord, error) {
	lines, err := json.Marshal(result.WinningLines)
	if err != nil {
		return nil, fmt.Errorf("spin_service.newSpinRecord: lines: %w", err)
	}
	reels, err := json.Marshal(result.Reels)
	if err != nil {
		return nil, fmt.Errorf("spin_service.newSpinRecord: reels: %w", err)
	}
	return &domain.SpinRecord{
		ID:            uuid.New(),
		Wallet:        wallet,
		Bet:           bet,
		Payout:        result.WinAmount,
		Multiplier:    result.Multiplier,
		IsJackpot:     result.IsJackpot,
		WinningLines:  string(lines),
		Reels:         string(reels),
		BalanceBefore: settlement.BalanceBefore,
		BalanceAfter:  settlement.BalanceAfter,
		CreatedAt:     at,
	}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// GetBalance returns the balance of wallet (the default wallet when empty).
func (s *SpinService) GetBalance(wallet string) decimal.Decimal {
	return s.ledger.GetBalance(s.walletOrDefault(wallet))
}

// RecentWins returns the public winners feed, most recent first.
func (s *SpinService) RecentWins() []domain.RecentWin {
	return s.ledger.RecentWins()
}

// PoolStats returns a snapshot of the pool counters.
func (s *SpinService) PoolStats() domain.PoolStats {
	return s.ledger.PoolStats()
}

// Catalog returns the symbol table spins are priced against.
func (s *SpinService) Catalog() *domain.Catalog {
	return s.catalog
}

func (s *SpinService) walletOrDefault(wallet string) string {
	if wallet == "" {
		return s.cfg.Game.DefaultWallet
	}
	return wallet
}

