package config

import (
	"fmt"
	"os"

	"github.com/evetabi/slot/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a symbol table override:
//
//	symbols:
//	  - id: cherry
//	    name: Cherry
//	    rarity: common
//	    multiplier: "2"
//	    weight: 25
//	    color: "#dc2626"
//
// Order in the file is the sampling order.
type catalogFile struct {
	Symbols []catalogEntry `yaml:"symbols"`
}

type catalogEntry struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Rarity     string  `yaml:"rarity"`
	Multiplier string  `yaml:"multiplier"` // decimal string, kept exact
	Weight     float64 `yaml:"weight"`
	Color      string  `yaml:"color"`
}

// LoadCatalog returns the symbol catalog named by path, or the built-in
// catalog when path is empty.
func LoadCatalog(path string) (*domain.Catalog, error) {
	if path == "" {
		return domain.DefaultCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.LoadCatalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes a YAML symbol table and validates it.
func ParseCatalog(raw []byte) (*domain.Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("config.ParseCatalog: %w", err)
	}

	symbols := make([]domain.Symbol, 0, len(f.Symbols))
	for i, e := range f.Symbols {
		mult, err := decimal.NewFromString(e.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("config.ParseCatalog: symbol #%d (%s): %w: multiplier %q",
				i, e.ID, domain.ErrInvalidCatalog, e.Multiplier)
		}
		name := e.Name
		if name == "" {
			name = e.ID
		}
		symbols = append(symbols, domain.Symbol{
			ID:         domain.SymbolID(e.ID),
			Name:       name,
			Rarity:     domain.Rarity(e.Rarity),
			Multiplier: mult,
			Weight:     e.Weight,
			Color:      e.Color,
		})
	}

	cat, err := domain.NewCatalog(symbols)
	if err != nil {
		return nil, fmt.Errorf("config.ParseCatalog: %w", err)
	}
	return cat, nil
}
