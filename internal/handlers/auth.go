package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"diamond-mines-backend/internal/models"
	"diamond-mines-backend/internal/services"
)

// PlayerTracker records player activity; *services.RedisService satisfies it.
type PlayerTracker interface {
	MarkPlayerSeen(ctx context.Context, playerID string) error
}

type AuthHandler struct {
	jwtService *services.JWTService
	players    PlayerTracker
}

func NewAuthHandler(jwtService *services.JWTService, players PlayerTracker) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		players:    players,
	}
}

// CreateSession issues a token for a new anonymous player.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	playerID := models.GeneratePlayerID()

	token, expiresAt, err := h.jwtService.GenerateToken(playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create session",
			"details": err.Error(),
		})
		return
	}

	if h.players != nil {
		if err := h.players.MarkPlayerSeen(c.Request.Context(), playerID); err != nil {
			log.Printf("Failed to mark player %s as seen: %v", playerID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"player_id":  playerID,
		"token":      token,
		"expires_at": expiresAt.Unix(),
	})
}
