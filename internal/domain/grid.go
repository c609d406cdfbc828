package domain

// ──────────────────────────────────────────────────────────────────────────────
// Grid
// ──────────────────────────────────────────────────────────────────────────────

const (
	Columns = 3 // independent reels
	Rows    = 3 // visible symbols per reel
)

// Grid is one spin's visible window, indexed [column][row]. Serialised as a
// list of columns, each listing rows top to bottom.
type Grid [Columns][Rows]SymbolID

// ──────────────────────────────────────────────────────────────────────────────
// Paylines
// ──────────────────────────────────────────────────────────────────────────────

// Payline indices. The order is fixed: results reference lines by index and
// LineSymbol relies on it.
const (
	LineTop          = 0 // row 0
	LineMiddle       = 1 // row 1
	LineBottom       = 2 // row 2
	LineDiagonalDown = 3 // (0,0) (1,1) (2,2)
	LineDiagonalUp   = 4 // (0,2) (1,1) (2,0)

	PaylineCount = 5
)

// paylineRows gives, for every payline, the row touched in each column.
var paylineRows = [PaylineCount][Columns]int{
	LineTop:          {0, 0, 0},
	LineMiddle:       {1, 1, 1},
	LineBottom:       {2, 2, 2},
	LineDiagonalDown: {0, 1, 2},
	LineDiagonalUp:   {2, 1, 0},
}

// PaylineRows returns the row touched in each column by line.
func PaylineRows(line int) ([Columns]int, bool) {
	if line < 0 || line >= PaylineCount {
		return [Columns]int{}, false
	}
	return paylineRows[line], true
}

// EvaluatePaylines returns the indices of every winning payline in ascending
// order. A line wins when all three cells it touches hold the same symbol.
// Returns an empty, non-nil slice when nothing wins.
func EvaluatePaylines(g Grid) []int {
	wins := make([]int, 0, PaylineCount)
	for line, rows := range paylineRows {
		first := g[0][rows[0]]
		if first == "" {
			continue
		}
		match := true
		for col := 1; col < Columns; col++ {
			if g[col][rows[col]] != first {
				match = false
				break
			}
		}
		if match {
			wins = append(wins, line)
		}
	}
	return wins
}

// LineSymbol returns the symbol a winning line paid on. Row lines read the
// first column at row == line; both diagonals read the centre cell, which
// every diagonal crosses.
func (g Grid) LineSymbol(line int) SymbolID {
	if line < LineDiagonalDown {
		return g[0][line]
	}
	return g[1][1]
}
