package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"diamond-mines-backend/internal/models"
)

const (
	maxStoredUserAgent  = 500
	maxAuditedUserAgent = 100
)

// Grant is a successful redemption.
type Grant struct {
	Code       string    `json:"code"`
	IP         string    `json:"ip"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// AccessGate validates one-time codes against the static catalog and the
// used-code store.
type AccessGate struct {
	catalog       []models.AccessCode
	enforceWindow bool
	used          UsedCodeStore
	audit         AuditSink
	now           func() time.Time
}

func NewAccessGate(cfg models.GameConfig, used UsedCodeStore, audit AuditSink) *AccessGate {
	if audit == nil {
		audit = NopAuditSink{}
	}
	return &AccessGate{
		catalog:       cfg.AccessCodes,
		enforceWindow: cfg.EnforceCodeWindows,
		used:          used,
		audit:         audit,
		now:           time.Now,
	}
}

// NormalizeCode trims and lower-cases raw input.
func NormalizeCode(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

// Redeem runs the redemption steps in order; the first failing step decides
// the returned *GateError.
//
// Lookup and Insert are two separate round trips, so two sessions can both
// pass Lookup for the same code. The store's Insert is the only place that
// enforces uniqueness and the losing session gets ErrCodeExpired.
func (g *AccessGate) Redeem(ctx context.Context, raw string, client ClientMetadata) (*Grant, error) {
	code := NormalizeCode(raw)
	if code == "" {
		return nil, ErrEmptyInput
	}

	if err := g.checkCatalog(code); err != nil {
		return nil, err
	}

	existing, err := g.used.Lookup(ctx, code)
	if err != nil {
		log.Printf("Used code lookup failed for %s: %v", code, err)
	} else if existing != nil {
		return nil, ErrCodeExpired
	}

	if client == nil {
		client = StaticClientMetadata{}
	}
	ip := client.CurrentIP()
	agent := client.UserAgent()

	err = g.used.Insert(ctx, code, models.RedemptionMetadata{
		IP:        ip,
		UserAgent: models.Truncate(agent, maxStoredUserAgent, ""),
	})
	if errors.Is(err, ErrCodeAlreadyUsed) {
		return nil, wrapGate(ErrCodeExpired, err)
	}
	if err != nil {
		log.Printf("Failed to record redemption of %s: %v", code, err)
		return nil, wrapGate(ErrPersistence, err)
	}

	now := g.now().UTC()
	g.audit.Emit(ctx, AuditCodeRedeemed, map[string]string{
		"code":       strings.ToUpper(code),
		"ip":         ip,
		"user_agent": models.Truncate(agent, maxAuditedUserAgent, "..."),
		"timestamp":  now.Format(time.RFC3339),
	})

	return &Grant{Code: code, IP: ip, RedeemedAt: now}, nil
}

func (g *AccessGate) checkCatalog(code string) error {
	found := false
	for _, entry := range g.catalog {
		if NormalizeCode(entry.Code) != code {
			continue
		}
		found = true
		if !g.enforceWindow || entry.ValidFrom.OpenAt(g.now()) {
			return nil
		}
	}
	if found {
		return ErrCodeNotActive
	}
	return ErrInvalidCode
}
