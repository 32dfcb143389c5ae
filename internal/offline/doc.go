// Package offline provides the shared data container used by every screen.
//
// Provider reads through to the remote ESPM service and keeps the last good
// copy of each entity set in a JSON document on disk. When the service is
// unreachable (espm.ErrUnavailable) reads are answered from that document
// and product edits are queued; Flush replays them once the service is
// back. Rejections other than unavailability are surfaced, never masked by
// cached data.
//
// The document is guarded by a gofrs/flock lock file so two running
// instances never interleave writes.
//
// Conflict resolution is intentionally absent: a queued edit overwrites the
// remote entity when replayed, and an edit the service rejects is dropped.
package offline
