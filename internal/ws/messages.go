// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/evetabi/slot/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeWin       MsgType = "win"
	MsgTypePoolStats MsgType = "pool_stats"
)

// ──────────────────────────────────────────────────────────────────────────────
// WinMessage is broadcast after every paying spin.
// ──────────────────────────────────────────────────────────────────────────────

// WinMessage mirrors one recent-win feed entry. The address is already masked.
type WinMessage struct {
	Type      MsgType         `json:"type"`
	ID        uuid.UUID       `json:"id"`
	Address   string          `json:"address"`
	Amount    decimal.Decimal `json:"amount"`
	Symbol    domain.SymbolID `json:"symbol"`
	IsJackpot bool            `json:"is_jackpot"`
	Timestamp time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// PoolStatsMessage is sent on the scheduler's cadence.
// ──────────────────────────────────────────────────────────────────────────────

// PoolStatsMessage carries a pool counters snapshot.
type PoolStatsMessage struct {
	Type      MsgType          `json:"type"`
	Stats     domain.PoolStats `json:"stats"`
	Timestamp time.Time        `json:"timestamp"`
}
