package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diamond-mines-backend/internal/models"
	"diamond-mines-backend/internal/services"
)

type SessionHandler struct {
	sessions *services.SessionManager
	cfg      models.GameConfig
}

func NewSessionHandler(sessions *services.SessionManager, cfg models.GameConfig) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		cfg:      cfg,
	}
}

func (h *SessionHandler) engine(c *gin.Context) *services.SessionEngine {
	return h.sessions.Get(c.Request.Context(), c.GetString("player_id"))
}

// GetConfig returns the public part of the game rules.
func (h *SessionHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"config": gin.H{
			"grid_size":           h.cfg.Grid,
			"odds":                h.cfg.Odds,
			"rewards":             h.cfg.Rewards,
			"win_threshold":       h.cfg.WinThreshold,
			"max_failed_attempts": h.cfg.MaxFailedAttempts,
			"claim_link":          h.cfg.ClaimLink,
		},
	})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": h.sessionView(h.engine(c).Snapshot()),
	})
}

func (h *SessionHandler) Unlock(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	engine := h.engine(c)
	client := services.StaticClientMetadata{
		IP:    c.ClientIP(),
		Agent: c.Request.UserAgent(),
	}

	grant, err := engine.Unlock(c.Request.Context(), req.Code, client)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"grant":   grant,
		"session": h.sessionView(engine.Snapshot()),
	})
}

func (h *SessionHandler) StartRound(c *gin.Context) {
	engine := h.engine(c)
	if err := engine.StartRound(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": h.sessionView(engine.Snapshot()),
	})
}

func (h *SessionHandler) Reveal(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	engine := h.engine(c)
	result := engine.Reveal(c.Request.Context(), *req.Index)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
		"session": h.sessionView(engine.Snapshot()),
	})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	engine := h.engine(c)
	engine.Logout(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Successfully logged out",
		"session": h.sessionView(engine.Snapshot()),
	})
}

func (h *SessionHandler) sessionView(s models.Snapshot) gin.H {
	view := gin.H{
		"state":          s.State,
		"grid":           s.MaskedGrid(),
		"revealed":       s.Revealed,
		"diamonds_found": s.DiamondsFound,
		"win_threshold":  h.cfg.WinThreshold,
		"attempt_count":  s.AttemptCount,
		"attempts_left":  s.AttemptsLeft,
		"pending":        s.Pending,
	}
	if s.Result != nil {
		view["result"] = *s.Result
	}
	if s.WonReward != nil {
		view["won_reward"] = *s.WonReward
		view["claim_link"] = h.cfg.ClaimLink
	}
	if s.State == models.StateMaintenance {
		view["message"] = h.cfg.DisabledMessage
	}
	return view
}
