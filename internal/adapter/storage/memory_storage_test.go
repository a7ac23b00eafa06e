package storage

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

func TestMemoryStorage_SetItemReportsChange(t *testing.T) {
	log, _ := test.NewNullLogger()
	ctx := context.Background()
	m := NewMemoryStorage(log)

	if changed, _ := m.SetItem(ctx, "k", "a"); !changed {
		t.Error("expected first write to change the value")
	}
	if changed, _ := m.SetItem(ctx, "k", "a"); changed {
		t.Error("expected identical write to be a no-op")
	}

	value, ok, _ := m.GetItem(ctx, "k")
	if !ok || value != "a" {
		t.Errorf("expected a, got %q ok=%v", value, ok)
	}

	if removed, _ := m.RemoveItem(ctx, "k"); !removed {
		t.Error("expected key to be removed")
	}
	if _, ok, _ := m.GetItem(ctx, "k"); ok {
		t.Error("expected key to be gone")
	}
}

func TestMemoryStorage_FanOut(t *testing.T) {
	log, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMemoryStorage(log)

	a, _ := m.Subscribe(ctx)
	b, _ := m.Subscribe(ctx)

	m.Publish(ctx, domain.StorageEvent{Key: "k", NewValue: "v", Origin: "x"})

	for _, ch := range []<-chan domain.StorageEvent{a, b} {
		if got := receive(t, ch); got.NewValue != "v" {
			t.Errorf("expected v, got %q", got.NewValue)
		}
	}
}

func TestMemoryStorage_FullSubscriberMissesEvents(t *testing.T) {
	log, hook := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMemoryStorage(log)

	ch, _ := m.Subscribe(ctx)
	for i := 0; i < subscriberBuffer+3; i++ {
		if err := m.Publish(ctx, domain.StorageEvent{Key: "k"}); err != nil {
			t.Fatalf("publish should never fail: %v", err)
		}
	}

	if len(ch) != subscriberBuffer {
		t.Errorf("expected %d buffered events, got %d", subscriberBuffer, len(ch))
	}
	if len(hook.AllEntries()) != 3 {
		t.Errorf("expected 3 drop warnings, got %d", len(hook.AllEntries()))
	}
}

func TestMemoryStorage_UnsubscribesOnCancel(t *testing.T) {
	log, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMemoryStorage(log)

	ch, _ := m.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}

	// Publishing after the subscriber left must not panic
	m.Publish(context.Background(), domain.StorageEvent{Key: "k"})
}
