package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewResultQueryClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero", 0, 1},
		{"negative", -5, 1},
		{"in range", 42, 42},
		{"upper bound", 100, 100},
		{"above max", 101, 100},
		{"way above max", 10_000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewResultQuery(SortLatest, tt.limit, 0)
			assert.Equal(t, tt.want, q.Limit)
		})
	}
}

func TestNewResultQueryClampsOffset(t *testing.T) {
	assert.Equal(t, 0, NewResultQuery(SortLatest, 10, -3).Offset)
	assert.Equal(t, 7, NewResultQuery(SortLatest, 10, 7).Offset)
}

func TestNewResultQueryUnknownSortFallsBackToLatest(t *testing.T) {
	assert.Equal(t, SortLatest, NewResultQuery("slowest", 10, 0).Sort)
	assert.Equal(t, SortFastest, NewResultQuery(SortFastest, 10, 0).Sort)
}

func TestDefaultResultQuery(t *testing.T) {
	q := DefaultResultQuery()
	assert.Equal(t, SortLatest, q.Sort)
	assert.Equal(t, DefaultResultLimit, q.Limit)
	assert.Equal(t, 0, q.Offset)
}

func TestParseResultSort(t *testing.T) {
	assert.Equal(t, SortFastest, ParseResultSort("fastest"))
	assert.Equal(t, SortFastest, ParseResultSort(" Fastest "))
	assert.Equal(t, SortLatest, ParseResultSort("latest"))
	assert.Equal(t, SortLatest, ParseResultSort(""))
	assert.Equal(t, SortLatest, ParseResultSort("bogus"))
}

func TestReplaceWithKeepsID(t *testing.T) {
	existing := &RaceResult{ID: "keep-me", UserID: "u1", LapTimeMs: 90000, SpeedKmh: 250}
	candidate := &RaceResult{
		ID:        "discard-me",
		UserID:    "u1",
		LapTimeMs: 85000,
		SpeedKmh:  290,
		UpdatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	existing.ReplaceWith(candidate)

	assert.Equal(t, ResultID("keep-me"), existing.ID)
	assert.Equal(t, int64(85000), existing.LapTimeMs)
	assert.Equal(t, 290.0, existing.SpeedKmh)
	assert.Equal(t, candidate.UpdatedAt, existing.UpdatedAt)
}

func TestIsFasterThanIsStrict(t *testing.T) {
	a := &RaceResult{LapTimeMs: 90000}
	b := &RaceResult{LapTimeMs: 90000}
	c := &RaceResult{LapTimeMs: 89999}

	assert.False(t, a.IsFasterThan(b))
	assert.True(t, c.IsFasterThan(a))
	assert.False(t, a.IsFasterThan(c))
}
