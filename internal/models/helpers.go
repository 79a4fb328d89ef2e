package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GeneratePlayerID() string {
	return uuid.New().String()
}

func GenerateEventID() string {
	return fmt.Sprintf("evt_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

// Truncate cuts s to at most n runes, appending suffix when it was cut.
func Truncate(s string, n int, suffix string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + suffix
}

// MaskedGrid returns the grid with unrevealed cells blanked out.
func (s *GameSession) MaskedGrid() []CellKind {
	out := make([]CellKind, len(s.Grid))
	for _, i := range s.Revealed {
		if i >= 0 && i < len(s.Grid) {
			out[i] = s.Grid[i]
		}
	}
	return out
}
