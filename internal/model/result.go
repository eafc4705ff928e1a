package model

import (
	"strings"
	"time"
)

// ResultID uniquely identifies a stored race result
type ResultID string

// LapOutcome is the output of a single lap simulation
type LapOutcome struct {
	SpeedKmh      float64
	PitStopSec    float64
	TravelTimeSec float64
	LapTimeMs     int64
}

// RaceResult is a user's best lap for one team on one track.
// At most one exists per ResultKey and its LapTimeMs never increases.
type RaceResult struct {
	ID       ResultID
	UserID   UserID
	Username string
	TeamID   TeamID
	TeamName string
	TrackID  TrackID
	City     string

	SpeedKmh      float64
	PitStopSec    float64
	TravelTimeSec float64
	LapTimeMs     int64

	UpdatedAt time.Time // last write
}

// ResultKey is the composite uniqueness key of a race result
type ResultKey struct {
	UserID  UserID
	TeamID  TeamID
	TrackID TrackID
}

// Key returns the composite key of the result
func (r *RaceResult) Key() ResultKey {
	return ResultKey{UserID: r.UserID, TeamID: r.TeamID, TrackID: r.TrackID}
}

// Outcome returns the simulated figures of the result
func (r *RaceResult) Outcome() LapOutcome {
	return LapOutcome{
		SpeedKmh:      r.SpeedKmh,
		PitStopSec:    r.PitStopSec,
		TravelTimeSec: r.TravelTimeSec,
		LapTimeMs:     r.LapTimeMs,
	}
}

// IsFasterThan reports whether r strictly beats other
func (r *RaceResult) IsFasterThan(other *RaceResult) bool {
	return r.LapTimeMs < other.LapTimeMs
}

// ReplaceWith overwrites every field except the id with those of candidate
func (r *RaceResult) ReplaceWith(candidate *RaceResult) {
	id := r.ID
	*r = *candidate
	r.ID = id
}

// UpsertOutcome describes what UpsertBestResult did
type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created" // no prior record for the key
	OutcomeUpdated UpsertOutcome = "updated" // candidate was strictly faster
	OutcomeIgnored UpsertOutcome = "ignored" // stored record kept
)

// ResultSort selects the ordering of listed results
type ResultSort string

const (
	SortLatest  ResultSort = "latest"  // UpdatedAt descending
	SortFastest ResultSort = "fastest" // LapTimeMs ascending
)

// ParseResultSort maps a query value to a ResultSort, defaulting to SortLatest
func ParseResultSort(raw string) ResultSort {
	if ResultSort(strings.ToLower(strings.TrimSpace(raw))) == SortFastest {
		return SortFastest
	}
	return SortLatest
}

// Pagination bounds for result listings
const (
	DefaultResultLimit = 20
	MaxResultLimit     = 100
)

// ResultQuery describes a page of a user's results
type ResultQuery struct {
	Sort   ResultSort
	Limit  int
	Offset int
}

// NewResultQuery builds a query with limit clamped to [1, MaxResultLimit] and offset to >= 0
func NewResultQuery(sort ResultSort, limit, offset int) ResultQuery {
	if sort != SortFastest {
		sort = SortLatest
	}
	return ResultQuery{
		Sort:   sort,
		Limit:  min(max(limit, 1), MaxResultLimit),
		Offset: max(offset, 0),
	}
}

// DefaultResultQuery returns the first page of latest results
func DefaultResultQuery() ResultQuery {
	return NewResultQuery(SortLatest, DefaultResultLimit, 0)
}
