package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Payout is the result of pricing one grid against a bet.
type Payout struct {
	Amount     decimal.Decimal `json:"amount"`
	Multiplier decimal.Decimal `json:"multiplier"` // sum over winning lines
	IsJackpot  bool            `json:"is_jackpot"`
}

// IsWin returns true when the payout credits anything.
func (p Payout) IsWin() bool {
	return p.Amount.IsPositive()
}

// CalculatePayout prices winning lines on g for bet.
//
// Formula:
//
//	multiplier = Σ catalog[LineSymbol(line)].Multiplier   over winning lines
//	amount     = bet × multiplier
//
// Multipliers from simultaneous lines add. IsJackpot is set when any winning
// line's symbol is jackpot-tier. No lines → (0, 0, false). The amount is not
// capped here.
func (c *Catalog) CalculatePayout(g Grid, lines []int, bet decimal.Decimal) (Payout, error) {
	if len(lines) == 0 {
		return Payout{Amount: decimal.Zero, Multiplier: decimal.Zero}, nil
	}

	total := decimal.Zero
	jackpot := false
	for _, line := range lines {
		if line < 0 || line >= PaylineCount {
			return Payout{}, fmt.Errorf("domain.CalculatePayout: payline %d out of range", line)
		}
		id := g.LineSymbol(line)
		sym, ok := c.Lookup(id)
		if !ok {
			return Payout{}, fmt.Errorf("domain.CalculatePayout: symbol %q not in catalog", id)
		}
		total = total.Add(sym.Multiplier)
		if sym.IsJackpot() {
			jackpot = true
		}
	}

	return Payout{
		Amount:     bet.Mul(total),
		Multiplier: total,
		IsJackpot:  jackpot,
	}, nil
}
