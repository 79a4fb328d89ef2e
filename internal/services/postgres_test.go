package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"diamond-mines-backend/internal/models"
)

func TestPostgresUsedCodeStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	store, err := NewPostgresUsedCodeStore(ctx, dsn)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer store.Close()

	code := "test-" + models.GeneratePlayerID()
	defer store.Delete(ctx, code)

	if rec, err := store.Lookup(ctx, code); err != nil || rec != nil {
		t.Fatalf("Expected no record, got %+v, %v", rec, err)
	}
	meta := models.RedemptionMetadata{IP: "10.0.0.2", UserAgent: "pg-test"}
	if err := store.Insert(ctx, code, meta); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, code, meta); !errors.Is(err, ErrCodeAlreadyUsed) {
		t.Errorf("Expected ErrCodeAlreadyUsed, got %v", err)
	}
	rec, err := store.Lookup(ctx, code)
	if err != nil || rec == nil || rec.RedeemedAtIP != "10.0.0.2" {
		t.Errorf("Unexpected lookup result %+v, %v", rec, err)
	}
}

func TestPostgresBadDSN(t *testing.T) {
	if _, err := NewPostgresUsedCodeStore(context.Background(), "::not a dsn::"); err == nil {
		t.Error("Malformed DSN should fail")
	}
}
