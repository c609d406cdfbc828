// Package domain defines the core entities and pure game math for the
// slot spin engine: the symbol catalog, the 3x3 grid, payline evaluation
// and the payout calculator.
package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// SymbolID identifies one reel symbol.
type SymbolID string

const (
	SymbolCherry    SymbolID = "cherry"
	SymbolCoin      SymbolID = "coin"
	SymbolClover    SymbolID = "clover"
	SymbolLightning SymbolID = "lightning"
	SymbolFire      SymbolID = "fire"
	SymbolStar      SymbolID = "star"
	SymbolSeven     SymbolID = "seven"
	SymbolCrown     SymbolID = "crown"
	SymbolDiamond   SymbolID = "diamond"
)

// Rarity classifies a symbol for payout scale and jackpot flagging.
type Rarity string

const (
	RarityCommon  Rarity = "common"
	RarityRare    Rarity = "rare"
	RarityJackpot Rarity = "jackpot"
)

// IsValid returns true if the rarity is a recognised tier.
func (r Rarity) IsValid() bool {
	return r == RarityCommon || r == RarityRare || r == RarityJackpot
}

// Symbol is one immutable catalog record.
type Symbol struct {
	ID         SymbolID        `json:"id"`
	Name       string          `json:"name"`
	Rarity     Rarity          `json:"rarity"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Weight     float64         `json:"weight"`
	Color      string          `json:"color"`
}

// IsJackpot returns true for jackpot-tier symbols.
func (s Symbol) IsJackpot() bool {
	return s.Rarity == RarityJackpot
}

// ──────────────────────────────────────────────────────────────────────────────
// Catalog
// ──────────────────────────────────────────────────────────────────────────────

// Catalog is the static symbol table. The slice order is the sampling order
// and never changes after construction; index gives O(1) lookup by ID.
type Catalog struct {
	symbols     []Symbol
	index       map[SymbolID]int
	totalWeight float64
}

// NewCatalog validates symbols and builds an indexed Catalog.
// Every symbol must have a unique non-empty ID, a known rarity, a finite
// weight > 0 and a multiplier > 0.
func NewCatalog(symbols []Symbol) (*Catalog, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", ErrInvalidCatalog)
	}

	c := &Catalog{
		symbols: make([]Symbol, len(symbols)),
		index:   make(map[SymbolID]int, len(symbols)),
	}
	for i, s := range symbols {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: symbol #%d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrInvalidCatalog, s.ID)
		}
		if !s.Rarity.IsValid() {
			return nil, fmt.Errorf("%w: symbol %q has unknown rarity %q", ErrInvalidCatalog, s.ID, s.Rarity)
		}
		if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) || s.Weight <= 0 {
			return nil, fmt.Errorf("%w: symbol %q weight must be > 0, got %v", ErrInvalidCatalog, s.ID, s.Weight)
		}
		if !s.Multiplier.IsPositive() {
			return nil, fmt.Errorf("%w: symbol %q multiplier must be > 0, got %s", ErrInvalidCatalog, s.ID, s.Multiplier)
		}
		c.symbols[i] = s
		c.index[s.ID] = i
		c.totalWeight += s.Weight
	}
	return c, nil
}

// DefaultSymbols returns the built-in symbol table in sampling order.
func DefaultSymbols() []Symbol {
	return []Symbol{
		{ID: SymbolCherry, Name: "Cherry", Rarity: RarityCommon, Multiplier: decimal.NewFromInt(2), Weight: 25, Color: "#dc2626"},
		{ID: SymbolCoin, Name: "Coin", Rarity: RarityCommon, Multiplier: decimal.NewFromInt(3), Weight: 22, Color: "#fbbf24"},
		{ID: SymbolClover, Name: "Lucky Clover", Rarity: RarityCommon, Multiplier: decimal.NewFromInt(4), Weight: 20, Color: "#22c55e"},
		{ID: SymbolLightning, Name: "Lightning", Rarity: RarityRare, Multiplier: decimal.NewFromInt(8), Weight: 12, Color: "#3b82f6"},
		{ID: SymbolFire, Name: "Fire", Rarity: RarityRare, Multiplier: decimal.NewFromInt(10), Weight: 10, Color: "#f97316"},
		{ID: SymbolStar, Name: "Star", Rarity: RarityRare, Multiplier: decimal.NewFromInt(15), Weight: 6, Color: "#eab308"},
		{ID: SymbolSeven, Name: "Lucky 7", Rarity: RarityJackpot, Multiplier: decimal.NewFromInt(25), Weight: 3, Color: "#dc2626"},
		{ID: SymbolCrown, Name: "Crown", Rarity: RarityJackpot, Multiplier: decimal.NewFromInt(50), Weight: 1.5, Color: "#a855f7"},
		{ID: SymbolDiamond, Name: "Diamond", Rarity: RarityJackpot, Multiplier: decimal.NewFromInt(100), Weight: 0.5, Color: "#06b6d4"},
	}
}

// DefaultCatalog returns the built-in catalog. It panics only if the
// built-in table itself is invalid.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultSymbols())
	if err != nil {
		panic(fmt.Sprintf("domain: built-in catalog: %v", err))
	}
	return c
}

// Len returns the number of symbols.
func (c *Catalog) Len() int { return len(c.symbols) }

// At returns the symbol at position i in sampling order.
func (c *Catalog) At(i int) Symbol { return c.symbols[i] }

// Last returns the final symbol in sampling order.
func (c *Catalog) Last() Symbol { return c.symbols[len(c.symbols)-1] }

// TotalWeight returns the cached sum of all weights.
func (c *Catalog) TotalWeight() float64 { return c.totalWeight }

// Lookup returns the record for id.
func (c *Catalog) Lookup(id SymbolID) (Symbol, bool) {
	i, ok := c.index[id]
	if !ok {
		return Symbol{}, false
	}
	return c.symbols[i], true
}

// Symbols returns a copy of the table in sampling order.
func (c *Catalog) Symbols() []Symbol {
	out := make([]Symbol, len(c.symbols))
	copy(out, c.symbols)
	return out
}

// Probability returns weight / total weight for id, or 0 if unknown.
func (c *Catalog) Probability(id SymbolID) float64 {
	s, ok := c.Lookup(id)
	if !ok || c.totalWeight == 0 {
		return 0
	}
	return s.Weight / c.totalWeight
}
