package services

import "time"

const (
	KeyUnlocked     = "player:%s:unlocked"
	KeyAttempts     = "player:%s:attempts:%s"
	KeyUsedCode     = "used_code:%s"
	KeyAuditLog     = "audit:events"
	KeyRateLimit    = "ratelimit:%s:%s"
	KeyPlayerActive = "player:%s:last_seen"

	TTLPlayerActive = 30 * 24 * time.Hour // 30 days
	DefaultTabTTL   = 30 * time.Minute

	MaxAuditEntries = 1000

	DefaultRateLimitUnlock = 10  // Max 10 code attempts per minute
	DefaultRateLimitReveal = 120 // Max 120 reveals per minute
)
