package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage/storage"
)

func waitForCount(t *testing.T, s usage.Storage, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		count, err := s.Count(context.Background())
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	count, _ := s.Count(context.Background())
	t.Fatalf("Expected %d stored records, got %d", want, count)
}

// =============================================================================
// Record Tests
// =============================================================================

func TestRecorderWritesAsync(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil)
	defer r.Close()

	err := r.Record(&usage.Record{
		AccountID:        "acct-1",
		Provider:         "openai",
		Model:            "gpt-4o",
		PromptTokens:     100,
		CompletionTokens: 50,
		TotalTokens:      150,
		StatusCode:       200,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	waitForCount(t, store, 1)

	records, _ := store.Query(context.Background(), nil)
	if records[0].ID == "" {
		t.Error("Expected a generated record ID")
	}
	if records[0].Timestamp.IsZero() {
		t.Error("Expected a generated timestamp")
	}
}

func TestRecorderPreservesExplicitID(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil)
	defer r.Close()

	if err := r.Record(&usage.Record{ID: "explicit-id", AccountID: "acct-1"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	waitForCount(t, store, 1)

	records, _ := store.Query(context.Background(), nil)
	if records[0].ID != "explicit-id" {
		t.Errorf("Expected explicit ID to be kept, got %s", records[0].ID)
	}
}

// =============================================================================
// Shutdown Tests
// =============================================================================

func TestRecorderCloseDrainsBuffer(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, &Config{AsyncBuffer: 100, WriteTimeout: time.Second})

	const records = 50
	for i := 0; i < records; i++ {
		if err := r.Record(&usage.Record{AccountID: "acct-1"}); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != records {
		t.Errorf("Expected all %d records written on close, got %d", records, count)
	}
}

func TestRecorderRejectsAfterClose(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil)
	r.Close()

	err := r.Record(&usage.Record{AccountID: "acct-1"})
	if err == nil {
		t.Error("Expected error recording after close")
	}
}
