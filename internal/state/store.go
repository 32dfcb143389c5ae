package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/technician/internal/espm"
)

// KPI summarizes sales order completion for the header widget.
type KPI struct {
	Completed int
	Total     int
}

// Ratio returns Completed/Total in [0,1]; zero when there are no orders.
func (k KPI) Ratio() float64 {
	if k.Total <= 0 {
		return 0
	}
	return float64(k.Completed) / float64(k.Total)
}

// SummarizeSalesOrders counts completed orders. Cancelled orders are left
// out of the total.
func SummarizeSalesOrders(orders []espm.SalesOrderHeader) KPI {
	var kpi KPI
	for _, order := range orders {
		if order.LifeCycleStatus == espm.LifeCycleCancelled {
			continue
		}
		kpi.Total++
		if order.Completed() {
			kpi.Completed++
		}
	}
	return kpi
}

// Snapshot represents the latest KPI data available to the UI.
type Snapshot struct {
	KPI                 KPI
	HasKPI              bool
	Offline             bool // data came from the offline cache
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the service has been unreachable for
// multiple polls or the data was served from the cache.
func (s Snapshot) IsOffline() bool {
	return s.Offline || s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored KPI. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(kpi *KPI, offline bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if kpi != nil {
		s.snapshot.KPI = *kpi
		s.snapshot.HasKPI = true
	} else {
		s.snapshot.KPI = KPI{}
		s.snapshot.HasKPI = false
	}
	s.snapshot.Offline = offline
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
