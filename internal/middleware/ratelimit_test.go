package middleware

import (
	"testing"
	"time"
)

func TestMemoryRateStoreCountsWithinWindow(t *testing.T) {
	store := NewMemoryRateStore()

	for i := 1; i <= 5; i++ {
		if got := store.Hit("1.2.3.4", time.Minute); got != i {
			t.Fatalf("hit %d: expected count %d, got %d", i, i, got)
		}
	}
}

func TestMemoryRateStoreResetsAfterWindow(t *testing.T) {
	store := NewMemoryRateStore()
	now := time.Now()
	store.nowFunc = func() time.Time { return now }

	store.Hit("1.2.3.4", time.Minute)
	store.Hit("1.2.3.4", time.Minute)

	now = now.Add(61 * time.Second)
	if got := store.Hit("1.2.3.4", time.Minute); got != 1 {
		t.Fatalf("expected count reset to 1 after window, got %d", got)
	}
}

func TestMemoryRateStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryRateStore()

	store.Hit("1.2.3.4", time.Minute)
	store.Hit("1.2.3.4", time.Minute)

	if got := store.Hit("5.6.7.8", time.Minute); got != 1 {
		t.Fatalf("expected separate counter per key, got %d", got)
	}
}
