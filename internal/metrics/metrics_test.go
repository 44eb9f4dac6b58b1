package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStoreExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(reg)

	s.Transition("confirmed", "admin_dashboard:root")
	s.Transition("confirmed", "telegram_admin")
	s.Transition("pending", "buyer_Sam")
	s.Allocation("key", "out_of_stock")
	s.Delivery("delivered_with_issues")
	s.Notification("email", errors.New("boom"), 20*time.Millisecond)
	s.Notification("chat", nil, time.Millisecond)
	s.Download("limit_reached")
	s.Swept(3)
	s.Swept(0)

	if got := testutil.ToFloat64(s.transitions.WithLabelValues("confirmed", "admin_dashboard")); got != 1 {
		t.Fatalf("expected dashboard transition, got %f", got)
	}
	if got := testutil.ToFloat64(s.transitions.WithLabelValues("pending", "buyer")); got != 1 {
		t.Fatalf("expected buyer transition, got %f", got)
	}
	if got := testutil.ToFloat64(s.allocations.WithLabelValues("key", "out_of_stock")); got != 1 {
		t.Fatalf("expected allocation, got %f", got)
	}
	if got := testutil.ToFloat64(s.notifications.WithLabelValues("email", "failed")); got != 1 {
		t.Fatalf("expected failed email, got %f", got)
	}
	if got := testutil.ToFloat64(s.notifications.WithLabelValues("chat", "sent")); got != 1 {
		t.Fatalf("expected sent chat, got %f", got)
	}
	if got := testutil.ToFloat64(s.sweptTokens); got != 3 {
		t.Fatalf("expected 3 swept tokens, got %f", got)
	}
	if n := testutil.CollectAndCount(s.downloads); n != 1 {
		t.Fatalf("expected one download series, got %d", n)
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	s.Transition("confirmed", "system")
	s.Allocation("file", "ok")
	s.Delivery("delivered")
	s.Notification("email", nil, 0)
	s.Download("ok")
	s.Swept(1)

	empty := New(nil)
	empty.Delivery("delivered")
}

func TestNewRegistryGathers(t *testing.T) {
	reg := NewRegistry()
	New(reg)
	if _, err := reg.Gather(); err != nil {
		t.Fatalf("gather: %v", err)
	}
}
