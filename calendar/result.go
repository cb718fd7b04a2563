package calendar

import "time"

// Result summarizes one reconcile run.
type Result struct {
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Unchanged int       `json:"unchanged"`
	Deleted   int       `json:"deleted"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	SyncedAt  time.Time `json:"synced_at"`
}

// Processed counts the fixtures whose destination state is confirmed
// correct: written, verified unchanged, or deliberately removed. Skipped
// fixtures had undecodable data and are deliberately excluded.
func (r *Result) Processed() int {
	return r.Created + r.Updated + r.Unchanged + r.Deleted
}

// OK reports batch success: some fixtures landed, or none failed. A batch
// where everything was skipped therefore still counts as success; the
// skips are visible in the counters and the logs.
func (r *Result) OK() bool {
	return r.Processed() > 0 || r.Failed == 0
}
