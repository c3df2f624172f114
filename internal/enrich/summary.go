package enrich

import (
	"time"

	"incident-pipeline/internal/storage"
)

// Summary reports the outcome of one enrichment run.
// Dispatched == OK + Fail + Lost.
type Summary struct {
	RunID       string    `json:"runId"`
	Workers     int       `json:"workers"`
	Dispatched  int       `json:"dispatched"`
	OK          int       `json:"ok"`
	Fail        int       `json:"fail"`
	Lost        int       `json:"lost"`
	Written     int       `json:"written"`
	WriteErrors int       `json:"writeErrors"`
	TimedOut    bool      `json:"timedOut"`
	ReadError   string    `json:"readError,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// Elapsed returns the wall time of the run.
func (s *Summary) Elapsed() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Record converts the summary to a ledger row.
func (s *Summary) Record() *storage.RunRecord {
	return &storage.RunRecord{
		ID:          s.RunID,
		Workers:     s.Workers,
		Dispatched:  s.Dispatched,
		OK:          s.OK,
		Fail:        s.Fail,
		Lost:        s.Lost,
		WriteErrors: s.WriteErrors,
		TimedOut:    s.TimedOut,
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
	}
}
