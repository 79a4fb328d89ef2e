package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"diamond-mines-backend/internal/config"
	"diamond-mines-backend/internal/models"
	"diamond-mines-backend/internal/services"
)

func TestRedisService(t *testing.T) {
	cfg := &config.Config{
		RedisURL:    "localhost:6379",
		RedisPass:   "",
		RedisDB:     0,
		TabScopeTTL: time.Minute,
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer redisService.Close()

	ctx := context.Background()
	playerID := "test-" + models.GeneratePlayerID()
	defer redisService.ClearPlayer(ctx, playerID)

	flags := redisService.Flags(playerID)

	unlocked, err := flags.GetUnlocked(ctx)
	if err != nil || unlocked {
		t.Fatalf("Expected locked player, got %v, %v", unlocked, err)
	}
	if err := flags.SetUnlocked(ctx, true); err != nil {
		t.Fatalf("Failed to set unlock flag: %v", err)
	}
	if unlocked, _ := flags.GetUnlocked(ctx); !unlocked {
		t.Error("Unlock flag should read back")
	}

	if err := flags.SetAttemptCount(ctx, services.ScopeTab, 2); err != nil {
		t.Fatalf("Failed to set tab attempts: %v", err)
	}
	if n, _ := flags.GetAttemptCount(ctx, services.ScopeTab); n != 2 {
		t.Errorf("Expected tab attempts 2, got %d", n)
	}
	if n, _ := flags.GetAttemptCount(ctx, services.ScopeDurable); n != 0 {
		t.Errorf("Durable attempts should be independent, got %d", n)
	}

	used := redisService.UsedCodes()
	code := "test-" + models.GeneratePlayerID()
	defer redisService.DeleteUsedCode(ctx, code)

	meta := models.RedemptionMetadata{IP: "127.0.0.1", UserAgent: "go-test"}
	if err := used.Insert(ctx, code, meta); err != nil {
		t.Fatalf("Failed to insert used code: %v", err)
	}
	if err := used.Insert(ctx, code, meta); !errors.Is(err, services.ErrCodeAlreadyUsed) {
		t.Errorf("Expected ErrCodeAlreadyUsed, got %v", err)
	}
	rec, err := used.Lookup(ctx, code)
	if err != nil || rec == nil || rec.UserAgent != "go-test" {
		t.Errorf("Unexpected used code record %+v, %v", rec, err)
	}

	redisService.AuditLog().Emit(ctx, services.AuditLockout, map[string]string{"player": playerID})
	events, err := redisService.AuditLog().Recent(ctx, 1)
	if err != nil || len(events) != 1 || events[0]["kind"] != services.AuditLockout {
		t.Errorf("Unexpected audit log %v, %v", events, err)
	}

	allowed, err := redisService.CheckRateLimit(ctx, playerID, "unlock", 1, time.Minute)
	if err != nil || !allowed {
		t.Errorf("First unlock should be allowed: %v", err)
	}
	allowed, _ = redisService.CheckRateLimit(ctx, playerID, "unlock", 1, time.Minute)
	if allowed {
		t.Error("Second unlock should hit the limit")
	}
	redisService.ClearRateLimit(ctx, playerID, "unlock")
}
