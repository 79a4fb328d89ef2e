package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"diamond-mines-backend/internal/config"
	"diamond-mines-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	client *redis.Client
	tabTTL time.Duration
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	tabTTL := cfg.TabScopeTTL
	if tabTTL <= 0 {
		tabTTL = DefaultTabTTL
	}

	return &RedisService{client: client, tabTTL: tabTTL}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// Flags returns the FlagStore of one player.
func (s *RedisService) Flags(playerID string) *RedisFlagStore {
	return &RedisFlagStore{client: s.client, playerID: playerID, tabTTL: s.tabTTL}
}

// RedisFlagStore keeps the unlock flag without expiry. Tab scoped counters
// expire tabTTL after their last write.
type RedisFlagStore struct {
	client   *redis.Client
	playerID string
	tabTTL   time.Duration
}

func (f *RedisFlagStore) GetUnlocked(ctx context.Context) (bool, error) {
	key := fmt.Sprintf(KeyUnlocked, f.playerID)
	val, err := f.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get unlock flag: %w", err)
	}
	return val == "true", nil
}

func (f *RedisFlagStore) SetUnlocked(ctx context.Context, unlocked bool) error {
	key := fmt.Sprintf(KeyUnlocked, f.playerID)
	if !unlocked {
		return f.client.Del(ctx, key).Err()
	}
	return f.client.Set(ctx, key, "true", 0).Err()
}

func (f *RedisFlagStore) GetAttemptCount(ctx context.Context, scope Scope) (int, error) {
	key := fmt.Sprintf(KeyAttempts, f.playerID, scope)
	val, err := f.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get attempt count: %w", err)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid attempt count %q: %w", val, err)
	}
	return n, nil
}

func (f *RedisFlagStore) SetAttemptCount(ctx context.Context, scope Scope, count int) error {
	key := fmt.Sprintf(KeyAttempts, f.playerID, scope)
	if count == 0 {
		return f.client.Del(ctx, key).Err()
	}
	var expiry time.Duration
	if scope == ScopeTab {
		expiry = f.tabTTL
	}
	return f.client.Set(ctx, key, count, expiry).Err()
}

// UsedCodes returns the Redis-backed used-code table.
func (s *RedisService) UsedCodes() *RedisUsedCodeStore {
	return &RedisUsedCodeStore{client: s.client, now: time.Now}
}

// RedisUsedCodeStore relies on SETNX for uniqueness.
type RedisUsedCodeStore struct {
	client *redis.Client
	now    func() time.Time
}

func (u *RedisUsedCodeStore) Lookup(ctx context.Context, code string) (*models.RedemptionRecord, error) {
	key := fmt.Sprintf(KeyUsedCode, code)
	data, err := u.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get used code: %w", err)
	}

	var rec models.RedemptionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal used code: %w", err)
	}
	return &rec, nil
}

func (u *RedisUsedCodeStore) Insert(ctx context.Context, code string, meta models.RedemptionMetadata) error {
	rec := models.RedemptionRecord{
		Code:         code,
		RedeemedAtIP: meta.IP,
		UserAgent:    meta.UserAgent,
		Timestamp:    u.now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal used code: %w", err)
	}

	key := fmt.Sprintf(KeyUsedCode, code)
	ok, err := u.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to insert used code: %w", err)
	}
	if !ok {
		return ErrCodeAlreadyUsed
	}
	return nil
}

// DeleteUsedCode removes a redemption. Only tests and operators use it;
// the game never deletes records.
func (s *RedisService) DeleteUsedCode(ctx context.Context, code string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyUsedCode, code)).Err()
}

// AuditLog returns a sink that keeps the newest MaxAuditEntries events.
func (s *RedisService) AuditLog() *RedisAuditSink {
	return &RedisAuditSink{client: s.client}
}

type RedisAuditSink struct {
	client *redis.Client
}

type auditEntry struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Fields    map[string]string `json:"fields"`
	Timestamp int64             `json:"timestamp"`
}

func (a *RedisAuditSink) Emit(ctx context.Context, kind string, fields map[string]string) {
	data, err := json.Marshal(auditEntry{
		ID:        models.GenerateEventID(),
		Kind:      kind,
		Fields:    fields,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return
	}

	pipe := a.client.Pipeline()
	pipe.LPush(ctx, KeyAuditLog, data)
	pipe.LTrim(ctx, KeyAuditLog, 0, MaxAuditEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		logAuditFailure(kind, err)
	}
}

// Recent returns up to limit audit events, newest first.
func (a *RedisAuditSink) Recent(ctx context.Context, limit int64) ([]map[string]any, error) {
	if limit <= 0 || limit > MaxAuditEntries {
		limit = 50
	}
	raw, err := a.client.LRange(ctx, KeyAuditLog, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	events := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		var evt map[string]any
		if err := json.Unmarshal([]byte(r), &evt); err != nil {
			continue
		}
		events = append(events, evt)
	}
	return events, nil
}

func (s *RedisService) CheckRateLimit(ctx context.Context, playerID string, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, playerID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) ClearRateLimit(ctx context.Context, playerID, action string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyRateLimit, playerID, action)).Err()
}

// MarkPlayerSeen records a player's last activity so idle players can be
// told apart from unknown ones.
func (s *RedisService) MarkPlayerSeen(ctx context.Context, playerID string) error {
	key := fmt.Sprintf(KeyPlayerActive, playerID)
	return s.client.Set(ctx, key, time.Now().Unix(), TTLPlayerActive).Err()
}

// ClearPlayer removes every flag of a player.
func (s *RedisService) ClearPlayer(ctx context.Context, playerID string) error {
	return s.client.Del(ctx,
		fmt.Sprintf(KeyUnlocked, playerID),
		fmt.Sprintf(KeyAttempts, playerID, ScopeDurable),
		fmt.Sprintf(KeyAttempts, playerID, ScopeTab),
		fmt.Sprintf(KeyPlayerActive, playerID),
	).Err()
}
