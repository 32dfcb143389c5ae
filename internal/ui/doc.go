// Package ui provides the Bubble Tea terminal interface for technician.
//
// # Architecture Overview
//
// The root Model owns every piece of screen state. Background work (list
// loads, product saves) runs in tea.Cmd functions that return a message;
// only Update applies the result. There is no locking inside this package.
//
// # Screens
//
//   - ProductList (products.go): the product table for one entity set. It
//     loads through an injected Loader, shows a full-screen indicator for
//     Refresh and an inline spinner for PullToRefresh, and emits a
//     NavigateMsg when a row is opened.
//   - detailView (detail.go): all fields of one product. The name and price
//     are editable; a successful save calls the list's NotifyChanged and
//     returns to the list.
//   - errorDialog (dialog.go): a single-action Modal shown when a load or a
//     save fails. While it is open every key except ctrl+c goes to it.
//
// # Load Serialization
//
// A ProductList runs at most one load at a time. Requests that arrive while
// a load is in flight collapse into one follow-up load which starts when
// the current one finishes and keeps the strongest indicator asked for.
// Each successful load replaces the list wholesale; a failed load leaves
// the previous list in place.
//
// # Header
//
// The header shows the connection state and the completed sales order KPI
// (kpi.go). Both come from state.Store snapshots that the app package's
// poller fills; the UI re-reads the store on every tick.
//
// # Strings and Themes
//
// User-facing strings resolve through a Catalog that config [strings]
// entries can override. Themes cycle with T and persist through prefs.
package ui
