package storage

import "time"

// RunRecord is one enrichment run as stored in the ledger.
type RunRecord struct {
	ID          string    `json:"runId"`
	Workers     int       `json:"workers"`
	Dispatched  int       `json:"dispatched"`
	OK          int       `json:"ok"`
	Fail        int       `json:"fail"`
	Lost        int       `json:"lost"`        // units unfinished when the drain timeout fired
	WriteErrors int       `json:"writeErrors"` // lines the writer failed to persist
	TimedOut    bool      `json:"timedOut"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}
