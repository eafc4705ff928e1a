package storage

import (
	"sort"

	"github.com/fritkotgp/raceapi/internal/model"
)

// SortResults orders results in place the way ListResultsForUser must return them.
// Ties fall back to the id so pages are stable.
func SortResults(results []*model.RaceResult, order model.ResultSort) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		switch order {
		case model.SortFastest:
			if a.LapTimeMs != b.LapTimeMs {
				return a.LapTimeMs < b.LapTimeMs
			}
		default:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		}
		return a.ID < b.ID
	})
}

// Page returns the window of results selected by query
func Page(results []*model.RaceResult, query model.ResultQuery) []*model.RaceResult {
	if query.Offset >= len(results) {
		return []*model.RaceResult{}
	}
	end := min(query.Offset+query.Limit, len(results))
	return results[query.Offset:end]
}
