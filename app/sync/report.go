package sync

import "time"

// EventResult records the outcome of reconciling one feed event.
type EventResult struct {
	UID      string `json:"uid"`
	Guest    string `json:"guest,omitempty"`
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`
	Error    string `json:"error,omitempty"`
}

// PropertyResult aggregates the outcomes for one apartment across all
// of its configured feeds.
type PropertyResult struct {
	ApartmentID      string        `json:"apartment_id"`
	PropertyName     string        `json:"property_name"`
	Added            []EventResult `json:"added"`
	Updated          int           `json:"updated"`
	SkippedDuplicate int           `json:"skipped_duplicate"`
	Cancelled        int           `json:"cancelled"`
	Failed           []EventResult `json:"failed"`
	Errors           []string      `json:"errors,omitempty"`
	SyncedAt         time.Time     `json:"synced_at"`
}

// Report is the aggregate result of one sync run over all apartments.
type Report struct {
	Results   []PropertyResult `json:"results"`
	StartedAt time.Time        `json:"started_at"`
	Duration  string           `json:"duration"`
}

// Totals sums per-property outcomes for logging and the stats endpoint.
func (r *Report) Totals() (added, updated, skipped, cancelled, failed int) {
	for _, pr := range r.Results {
		added += len(pr.Added)
		updated += pr.Updated
		skipped += pr.SkippedDuplicate
		cancelled += pr.Cancelled
		failed += len(pr.Failed) + len(pr.Errors)
	}
	return
}
