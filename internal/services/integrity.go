package services

import "diamond-mines-backend/internal/models"

// VerifyDiamonds recounts the diamonds among the revealed cells, ignoring
// any index outside the grid.
func VerifyDiamonds(grid []models.CellKind, revealed []int) int {
	count := 0
	for _, i := range revealed {
		if i >= 0 && i < len(grid) && grid[i] == models.CellDiamond {
			count++
		}
	}
	return count
}
