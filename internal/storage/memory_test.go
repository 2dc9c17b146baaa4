package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryFetchBeforeStore(t *testing.T) {
	m := NewMemory()

	_, err := m.Fetch(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreThenFetch(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Store(ctx, []byte("ledger bytes")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := m.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(got) != "ledger bytes" {
		t.Errorf("Fetch() = %q, want %q", got, "ledger bytes")
	}

	// The returned slice is a copy; mutating it must not corrupt the store.
	got[0] = 'X'
	again, err := m.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(again) != "ledger bytes" {
		t.Errorf("Fetch() after caller mutation = %q, want %q", again, "ledger bytes")
	}
}

func TestMemoryFailureInjection(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	boom := errors.New("boom")
	m.FetchErr = boom
	if _, err := m.Fetch(ctx); !errors.Is(err, boom) {
		t.Errorf("Fetch() error = %v, want injected error", err)
	}

	m.FetchErr = nil
	m.StoreErr = boom
	if err := m.Store(ctx, []byte("x")); !errors.Is(err, boom) {
		t.Errorf("Store() error = %v, want injected error", err)
	}
}
