package request

import (
	"net/url"
	"strconv"

	"github.com/fritkotgp/raceapi/internal/model"
)

// ResultQueryFromValues reads sortBy, limit and offset from a query string.
// Missing or non-numeric values fall back to defaults, out-of-range ones are clamped.
func ResultQueryFromValues(values url.Values) model.ResultQuery {
	return model.NewResultQuery(
		model.ParseResultSort(values.Get("sortBy")),
		intOr(values.Get("limit"), model.DefaultResultLimit),
		intOr(values.Get("offset"), 0),
	)
}

func intOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
