package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/technician/internal/espm"
	"github.com/five82/technician/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 30 * time.Second
	maxBackoffFactor    = 4
	kpiFetchTimeout     = 10 * time.Second
)

// SalesOrderSource is the slice of the data container the KPI poller uses.
type SalesOrderSource interface {
	SalesOrders(ctx context.Context) ([]espm.SalesOrderHeader, error)
	Offline() bool
}

// StartPoller launches a background goroutine that refreshes the KPI in
// store. Consecutive failures back off exponentially. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, source SalesOrderSource, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		for {
			if refreshKPI(ctx, store, source, log) {
				failures = 0
			} else {
				failures++
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// refreshKPI performs one poll and reports whether it succeeded.
func refreshKPI(ctx context.Context, store *state.Store, source SalesOrderSource, log zerolog.Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, kpiFetchTimeout)
	defer cancel()

	orders, err := source.SalesOrders(ctx)
	if err != nil {
		store.Update(nil, false, err)
		log.Warn().Err(err).Msg("kpi poll failed")
		return false
	}
	kpi := state.SummarizeSalesOrders(orders)
	store.Update(&kpi, source.Offline(), nil)
	log.Debug().Int("completed", kpi.Completed).Int("total", kpi.Total).Msg("kpi updated")
	return true
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at backoffCeiling(base).
func calculateBackoff(failures int, base time.Duration) time.Duration {
	ceiling := backoffCeiling(base)
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	return d
}

// backoffCeiling is maxBackoffFactor intervals, and at least maxBackoff.
func backoffCeiling(base time.Duration) time.Duration {
	return max(maxBackoff, maxBackoffFactor*base)
}
