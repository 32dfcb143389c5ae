package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/technician/internal/espm"
	"github.com/five82/technician/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 64; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestCalculateBackoff_DefaultInterval(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 2 * time.Minute},
		{64, 2 * time.Minute},
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.failures, defaultPollInterval); got != tt.want {
			t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, defaultPollInterval, got, tt.want)
		}
	}
}

type fakeSalesOrders struct {
	orders  []espm.SalesOrderHeader
	err     error
	offline bool
}

func (f fakeSalesOrders) SalesOrders(context.Context) ([]espm.SalesOrderHeader, error) {
	return f.orders, f.err
}

func (f fakeSalesOrders) Offline() bool { return f.offline }

func TestRefreshKPI(t *testing.T) {
	var store state.Store

	ok := refreshKPI(context.Background(), &store, fakeSalesOrders{
		orders:  []espm.SalesOrderHeader{{LifeCycleStatus: "C"}, {LifeCycleStatus: "N"}},
		offline: true,
	}, zerolog.Nop())
	if !ok {
		t.Fatalf("refreshKPI = false, want true")
	}
	snap := store.Snapshot()
	if !snap.HasKPI || snap.KPI.Completed != 1 || snap.KPI.Total != 2 || !snap.Offline {
		t.Fatalf("snapshot = %#v, want 1/2 offline", snap)
	}

	ok = refreshKPI(context.Background(), &store, fakeSalesOrders{err: errors.New("down")}, zerolog.Nop())
	if ok {
		t.Fatalf("refreshKPI = true on error")
	}
	snap = store.Snapshot()
	if snap.KPI.Completed != 1 || snap.LastError == nil || snap.ConsecutiveFailures != 1 {
		t.Fatalf("snapshot after error = %#v, want previous KPI kept and error recorded", snap)
	}
}

func TestStartPoller_PublishesAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store state.Store
	StartPoller(ctx, &store, fakeSalesOrders{orders: []espm.SalesOrderHeader{{LifeCycleStatus: "C"}}}, time.Hour, zerolog.Nop())

	deadline := time.Now().Add(2 * time.Second)
	for !store.Snapshot().HasKPI {
		if time.Now().After(deadline) {
			t.Fatalf("poller did not publish a KPI")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
