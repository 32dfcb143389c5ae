// Package state provides thread-safe state shared between the KPI poller
// and the UI.
//
// # Overview
//
// The background poller fetches sales order headers and publishes a KPI
// summary into a Store; the UI reads a Snapshot on every tick and renders
// the header widget from it. Neither side blocks the other on network I/O.
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌──────────────────┐
//	│ SalesOrders()  │            │                  │
//	│      ↓         │            │                  │
//	│ store.Update() │───────────→│ store.Snapshot() │
//	│      ↓         │  (mutex)   │      ↓           │
//	│  repeat...     │            │  render header   │
//	└────────────────┘            └──────────────────┘
//
// # Update Semantics
//
//	store.Update(&kpi, offline, nil) // replace KPI, reset failures
//	store.Update(nil, false, err)    // keep KPI, record error, count failure
//
// Failed polls never erase the last good KPI, so the header keeps showing
// data while the service is down.
//
// The product list itself does not live here: it is owned by the UI loop
// and only written from Update, so it needs no lock.
//
// The zero Store is ready to use.
package state
