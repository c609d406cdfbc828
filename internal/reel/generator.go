package reel

import "github.com/evetabi/slot/internal/domain"

// Generator produces spin grids from a Sampler.
type Generator struct {
	sampler *Sampler
}

// NewGenerator creates a Generator.
func NewGenerator(sampler *Sampler) *Generator {
	return &Generator{sampler: sampler}
}

// Generate fills a fresh grid with Columns × Rows independent draws, column
// by column, top to bottom. It has no failure mode.
func (g *Generator) Generate() domain.Grid {
	var grid domain.Grid
	for col := 0; col < domain.Columns; col++ {
		for row := 0; row < domain.Rows; row++ {
			grid[col][row] = g.sampler.Draw().ID
		}
	}
	return grid
}
