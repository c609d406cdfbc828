package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/evetabi/slot/internal/domain"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Ledger: in-memory owner of balances, the winners feed and pool stats
// ──────────────────────────────────────────────────────────────────────────────

// LedgerConfig holds the constants a Ledger is built with.
type LedgerConfig struct {
	StartingBalance decimal.Decimal  // balance of a wallet on first reference
	Retention       int              // recent wins kept
	PageSize        int              // recent wins returned by RecentWins
	Pool            domain.PoolStats // initial pool counters
	Clock           func() time.Time // stamps recorded wins; nil = time.Now in UTC
}

// account is one wallet's balance guarded by its own lock.
type account struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

// Settlement reports the balance on both sides of one transaction.
type Settlement struct {
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// Ledger is the sole authority for wallet balances, the recent-win sequence
// and pool statistics. Balance mutations are serialised per wallet; the feed
// and the pool counters share one critical section.
type Ledger struct {
	cfg LedgerConfig

	mu       sync.RWMutex // guards accounts (the map, not the balances)
	accounts map[string]*account

	feedMu sync.Mutex // guards wins and pool
	wins   []domain.RecentWin
	pool   domain.PoolStats
}

// NewLedger creates an empty Ledger.
func NewLedger(cfg LedgerConfig) *Ledger {
	if cfg.Retention < 1 {
		cfg.Retention = 1
	}
	if cfg.PageSize < 1 || cfg.PageSize > cfg.Retention {
		cfg.PageSize = cfg.Retention
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &Ledger{
		cfg:      cfg,
		accounts: make(map[string]*account),
		wins:     make([]domain.RecentWin, 0, cfg.Retention+1),
		pool:     cfg.Pool,
	}
}

// account returns the account for wallet, creating it at the starting
// balance on first reference.
func (l *Ledger) account(wallet string) *account {
	// Fast path: account exists
	l.mu.RLock()
	a, ok := l.accounts[wallet]
	l.mu.RUnlock()
	if ok {
		return a
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok = l.accounts[wallet]; !ok {
		a = &account{balance: l.cfg.StartingBalance}
		l.accounts[wallet] = a
	}
	return a
}

// ── Balances ──────────────────────────────────────────────────────────────────

// GetBalance returns the current balance of wallet.
func (l *Ledger) GetBalance(wallet string) decimal.Decimal {
	a := l.account(wallet)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Transact runs one spin's money movement under the wallet's lock:
//
//  1. reject with ErrInsufficientBalance if balance < bet (nothing mutated)
//  2. debit bet
//  3. call resolve for the payout
//  4. credit payout
//
// If resolve returns an error or panics, the debit is rolled back before the
// lock is released, so no other caller ever sees the intermediate balance.
// resolve must not call back into the Ledger for the same wallet.
func (l *Ledger) Transact(wallet string, bet decimal.Decimal, resolve func() (decimal.Decimal, error)) (s Settlement, err error) {
	if bet.IsNegative() {
		return Settlement{}, fmt.Errorf("ledger.Transact: %w: negative bet %s", domain.ErrInvalidBet, bet)
	}

	a := l.account(wallet)
	a.mu.Lock()
	defer a.mu.Unlock()

	before := a.balance
	if before.LessThan(bet) {
		return Settlement{}, domain.ErrInsufficientBalance
	}
	a.balance = before.Sub(bet)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ledger.Transact: recovered panic: %v", r)
		}
		if err != nil {
			a.balance = before
			s = Settlement{}
		}
	}()

	payout, err := resolve()
	if err != nil {
		return Settlement{}, fmt.Errorf("ledger.Transact: %w", err)
	}
	if payout.IsNegative() {
		return Settlement{}, fmt.Errorf("ledger.Transact: negative payout %s", payout)
	}

	a.balance = a.balance.Add(payout)
	return Settlement{BalanceBefore: before, BalanceAfter: a.balance}, nil
}

// DebitThenCredit stores balance - bet + payout for wallet in one step.
// Returns ErrInsufficientBalance, with nothing mutated, if balance < bet.
func (l *Ledger) DebitThenCredit(wallet string, bet, payout decimal.Decimal) (decimal.Decimal, error) {
	s, err := l.Transact(wallet, bet, func() (decimal.Decimal, error) {
		return payout, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return s.BalanceAfter, nil
}

// Wallets returns the number of wallets seen so far.
func (l *Ledger) Wallets() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}

// ── Feed & pool ───────────────────────────────────────────────────────────────

// RecordWin stamps win with the current time, prepends it to the recent-win
// sequence and evicts the oldest entries beyond the retention bound. The stamp
// is taken inside the feed lock, so feed order and timestamp order agree.
// Returns the stored entry.
func (l *Ledger) RecordWin(win domain.RecentWin) domain.RecentWin {
	l.feedMu.Lock()
	defer l.feedMu.Unlock()

	win.Timestamp = l.cfg.Clock()

	l.wins = append(l.wins, domain.RecentWin{})
	copy(l.wins[1:], l.wins)
	l.wins[0] = win
	if len(l.wins) > l.cfg.Retention {
		clear(l.wins[l.cfg.Retention:])
		l.wins = l.wins[:l.cfg.Retention]
	}
	return win
}

// AccrueVolume adds bet to the running volume counter. The counter only
// grows; it is not a time-windowed aggregate.
func (l *Ledger) AccrueVolume(bet decimal.Decimal) {
	l.feedMu.Lock()
	defer l.feedMu.Unlock()
	l.pool.Volume24h = l.pool.Volume24h.Add(bet)
}

// RecentWins returns up to PageSize wins, most recent first.
func (l *Ledger) RecentWins() []domain.RecentWin {
	l.feedMu.Lock()
	defer l.feedMu.Unlock()

	n := min(len(l.wins), l.cfg.PageSize)
	out := make([]domain.RecentWin, n)
	copy(out, l.wins[:n])
	return out
}

// RetainedWins returns how many wins are currently held.
func (l *Ledger) RetainedWins() int {
	l.feedMu.Lock()
	defer l.feedMu.Unlock()
	return len(l.wins)
}

// PoolStats returns a snapshot of the pool counters.
func (l *Ledger) PoolStats() domain.PoolStats {
	l.feedMu.Lock()
	defer l.feedMu.Unlock()
	return l.pool
}
