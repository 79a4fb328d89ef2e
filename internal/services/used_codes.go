package services

import (
	"context"
	"sync"
	"time"

	"diamond-mines-backend/internal/models"
)

// UsedCodeStore is the append-only table of redeemed codes. Insert must be
// the uniqueness enforcement point and return ErrCodeAlreadyUsed when the
// code is already present.
type UsedCodeStore interface {
	Lookup(ctx context.Context, code string) (*models.RedemptionRecord, error)
	Insert(ctx context.Context, code string, meta models.RedemptionMetadata) error
}

type MemoryUsedCodeStore struct {
	mu      sync.Mutex
	records map[string]models.RedemptionRecord
	now     func() time.Time
}

func NewMemoryUsedCodeStore() *MemoryUsedCodeStore {
	return &MemoryUsedCodeStore{
		records: make(map[string]models.RedemptionRecord),
		now:     time.Now,
	}
}

func (m *MemoryUsedCodeStore) Lookup(ctx context.Context, code string) (*models.RedemptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[code]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryUsedCodeStore) Insert(ctx context.Context, code string, meta models.RedemptionMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[code]; ok {
		return ErrCodeAlreadyUsed
	}
	m.records[code] = models.RedemptionRecord{
		Code:         code,
		RedeemedAtIP: meta.IP,
		UserAgent:    meta.UserAgent,
		Timestamp:    m.now().UTC(),
	}
	return nil
}
