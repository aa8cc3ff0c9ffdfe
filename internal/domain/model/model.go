// Package model contains the data types shared between layers.
package model

import "time"

// Record maps a training module id to the user's best achieved score.
// An absent module counts as zero toward the total.
type Record map[string]int

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Total sums the best scores across all modules.
func (r Record) Total() int {
	total := 0
	for _, v := range r {
		total += v
	}
	return total
}

// Entry is one row of the global leaderboard.
type Entry struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	TotalScore  int       `json:"total_score"`
	LastUpdated time.Time `json:"last_updated"`
}

// Identity is a verified (user id, display name) pair produced by the auth
// layer. The core never inspects credentials itself; holding an Identity
// means the bearer token already checked out.
type Identity struct {
	UserID string
	Name   string
}
