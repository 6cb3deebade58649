package booking

import (
	"time"
)

// Status is the outcome of a run.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result accumulates what happened during one run.
type Result struct {
	Status        Status     `json:"status"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	LoginTime     *time.Time `json:"login_time,omitempty"`
	TargetDate    string     `json:"target_date,omitempty"`
	Venue         string     `json:"venue"`
	FacilityType  string     `json:"facility_type"`
	Username      string     `json:"username"`
	SelectedSlots []string   `json:"selected_slots"`
	SlotIndices   []int      `json:"slot_indices"`
	Error         string     `json:"error,omitempty"`
}

// NewResult starts a pending result.
func NewResult(start time.Time, p Params) *Result {
	return &Result{
		Status:        StatusPending,
		StartTime:     start,
		Venue:         p.Venue,
		FacilityType:  p.FacilityType,
		Username:      p.Username,
		SelectedSlots: []string{},
		SlotIndices:   []int{},
	}
}

// Succeed marks the run successful.
func (r *Result) Succeed(at time.Time) {
	r.Status = StatusSuccess
	r.EndTime = &at
}

// Fail marks the run failed with a reason.
func (r *Result) Fail(at time.Time, reason string) {
	r.Status = StatusFailed
	r.EndTime = &at
	r.Error = reason
}

// Duration is the time from start to end, or to now while still running.
func (r *Result) Duration(now time.Time) time.Duration {
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return now.Sub(r.StartTime)
}
