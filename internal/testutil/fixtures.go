package testutil

import "github.com/fritkotgp/raceapi/internal/model"

// Seeded catalog ids
var (
	TeamFrietkot = model.TeamIDFromName("Frietkot Racing")
	TeamBicky    = model.TeamIDFromName("Bicky Burger Motorsport")
	TrackSpa     = model.TrackIDFromName("Spa-Francorchamps")
	TrackZolder  = model.TrackIDFromName("Circuit Zolder")
)

// Random draws (speed, pit stop) and the Spa-Francorchamps lap times they produce
var (
	SpaMidDraws  = []float64{0.5, 0.5} // 275.00 km/h, 22.50 s
	SpaSlowDraws = []float64{0, 0}     // 250.00 km/h, 20.00 s
	SpaFastDraws = []float64{0.99, 0}  // 299.50 km/h, 20.00 s
)

const (
	SpaMidLapMs  int64 = 114189
	SpaSlowLapMs int64 = 120858
	SpaFastLapMs int64 = 104188
)
