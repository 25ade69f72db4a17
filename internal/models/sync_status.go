package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncState is a step of a single sync invocation
type SyncState string

const (
	SyncStateIdle              SyncState = "idle"
	SyncStateFetchingWatermark SyncState = "fetching_watermark"
	SyncStateFetching          SyncState = "fetching"
	SyncStateClassifying       SyncState = "classifying"
	SyncStatePersisting        SyncState = "persisting"
	SyncStateReloading         SyncState = "reloading"
	SyncStateScoring           SyncState = "scoring"
	SyncStateDone              SyncState = "done"
	SyncStateFailed            SyncState = "failed"
)

// SyncRun records the outcome of one sync invocation
type SyncRun struct {
	RunID      string     `json:"run_id" yaml:"run_id"`
	Repository string     `json:"repository" yaml:"repository"`
	State      SyncState  `json:"state" yaml:"state"`
	Since      *time.Time `json:"since,omitempty" yaml:"since,omitempty"`
	Fetched    int        `json:"fetched" yaml:"fetched"`
	Inserted   int        `json:"inserted" yaml:"inserted"`
	Total      int        `json:"total" yaml:"total"`
	Score      int        `json:"score" yaml:"score"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time  `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the run took
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// String returns the JSON string representation of the sync run
func (r *SyncRun) String() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal sync run: %v"}`, err)
	}
	return string(data)
}

// SyncReport is everything a sync produces for the dashboard and diagnosis collaborators
type SyncReport struct {
	SyncRun      `yaml:",inline"`
	Assessment   HealthAssessment `json:"assessment" yaml:"assessment"`
	Distribution map[Category]int `json:"distribution" yaml:"distribution"`
	Trend        Trend            `json:"trend" yaml:"trend"`
}
