package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// SpinResult
// ──────────────────────────────────────────────────────────────────────────────

// SpinResult is the immutable outcome of one spin, handed to the caller.
type SpinResult struct {
	Reels        Grid            `json:"reels"`
	WinningLines []int           `json:"winning_lines"`
	WinAmount    decimal.Decimal `json:"win_amount"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	IsJackpot    bool            `json:"is_jackpot"`
}

// WinSymbol returns the symbol of the first winning line, or "" on a loss.
func (r *SpinResult) WinSymbol() SymbolID {
	if len(r.WinningLines) == 0 {
		return ""
	}
	return r.Reels.LineSymbol(r.WinningLines[0])
}

// SpinOutcome pairs a settled result with the wallet's new balance.
type SpinOutcome struct {
	Result  SpinResult      `json:"result"`
	Balance decimal.Decimal `json:"balance"`
}

// SpinRequest carries the inputs of one spin. The wallet is an opaque key.
type SpinRequest struct {
	Wallet string
	Bet    decimal.Decimal
}

// ──────────────────────────────────────────────────────────────────────────────
// RecentWin
// ──────────────────────────────────────────────────────────────────────────────

// RecentWin is one entry of the public winners feed.
type RecentWin struct {
	ID        uuid.UUID       `json:"id"`
	Address   string          `json:"address"` // masked wallet
	Amount    decimal.Decimal `json:"amount"`
	Symbol    SymbolID        `json:"symbol"`
	Timestamp time.Time       `json:"timestamp"`
}

// MaskWallet shortens a wallet identifier for public display as
// "<first 6>...<last 4>". Identifiers of 10 runes or fewer are returned as is.
func MaskWallet(wallet string) string {
	r := []rune(wallet)
	if len(r) <= 10 {
		return wallet
	}
	return string(r[:6]) + "..." + string(r[len(r)-4:])
}

// ──────────────────────────────────────────────────────────────────────────────
// PoolStats
// ──────────────────────────────────────────────────────────────────────────────

// PoolStats is a snapshot of the aggregate pool counters.
//
// Volume24h is a running total of wagers for the life of the process. It is
// not a time-windowed aggregate despite the name.
type PoolStats struct {
	TotalLiquidity decimal.Decimal `json:"total_liquidity"`
	UserShare      decimal.Decimal `json:"user_share"`
	Volume24h      decimal.Decimal `json:"volume_24h"`
	APY            decimal.Decimal `json:"apy"`
}

// ──────────────────────────────────────────────────────────────────────────────
// SpinRecord: journal entry
// ──────────────────────────────────────────────────────────────────────────────

// SpinRecord is an append-only audit record of one settled spin.
type SpinRecord struct {
	ID            uuid.UUID       `json:"id"             db:"id"`
	Wallet        string          `json:"wallet"         db:"wallet"`
	Bet           decimal.Decimal `json:"bet"            db:"bet"`
	Payout        decimal.Decimal `json:"payout"         db:"payout"`
	Multiplier    decimal.Decimal `json:"multiplier"     db:"multiplier"`
	IsJackpot     bool            `json:"is_jackpot"     db:"is_jackpot"`
	WinningLines  string          `json:"winning_lines"  db:"winning_lines"` // JSON array
	Reels         string          `json:"reels"          db:"reels"`         // JSON array of columns
	BalanceBefore decimal.Decimal `json:"balance_before" db:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"  db:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
}
