package services

import "diamond-mines-backend/internal/models"

// GridGenerator draws every cell independently: a diamond with probability
// diamondPercent/100, otherwise a bomb. A board may hold no diamonds at all.
type GridGenerator struct {
	rng RandomSource
}

func NewGridGenerator(rng RandomSource) *GridGenerator {
	if rng == nil {
		rng = NewRandomSource()
	}
	return &GridGenerator{rng: rng}
}

func (g *GridGenerator) Generate(rows, columns int, diamondPercent float64) []models.CellKind {
	if rows <= 0 || columns <= 0 {
		return []models.CellKind{}
	}
	cells := make([]models.CellKind, rows*columns)
	for i := range cells {
		if g.rng.Float64()*100 < diamondPercent {
			cells[i] = models.CellDiamond
		} else {
			cells[i] = models.CellBomb
		}
	}
	return cells
}
