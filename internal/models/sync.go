package models

import "time"

// SyncState labels the phase a reconciliation attempt is in.
type SyncState string

const (
	SyncIdle        SyncState = "IDLE"
	SyncFetching    SyncState = "FETCHING"
	SyncNormalizing SyncState = "NORMALIZING"
	SyncPersisting  SyncState = "PERSISTING"
	SyncSucceeded   SyncState = "SUCCEEDED"
	SyncFailed      SyncState = "FAILED"
)

// SyncOutcome reports the result of one reconciliation run. It is transient:
// only the last-sync marker outlives the request that triggered the sync.
type SyncOutcome struct {
	Success     bool      `json:"success"`
	RowsFetched int       `json:"rows_fetched"`
	Upserted    int       `json:"upserted"`
	Rejected    int       `json:"rejected"`
	Degraded    int       `json:"degraded"`
	ErrorCode   string    `json:"error_code,omitempty"`
	FinishedAt  time.Time `json:"finished_at"`
}

// SyncStatus is the externally visible reconciler state. State holds the
// phase of the running attempt, or the terminal state of the last one.
type SyncStatus struct {
	InProgress bool       `json:"in_progress"`
	State      SyncState  `json:"state"`
	LastSync   *time.Time `json:"last_sync,omitempty"`
}
