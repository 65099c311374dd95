package model

import "time"

// RunRecord summarizes one batch grading run for the history listing.
type RunRecord struct {
	ID             string        `json:"id"`
	AssignmentName string        `json:"assignment_name"`
	Dir            string        `json:"dir"`
	Total          int           `json:"total"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	MeanScore      float64       `json:"mean_score"`
	Elapsed        time.Duration `json:"elapsed"`
	StartedAt      time.Time     `json:"started_at"`
}
