package redis

import (
	"encoding/json"
	"time"

	"github.com/fritkotgp/raceapi/internal/model"
)

// resultRecord is the stored payload of a race result. The id lives in the key so an
// update can rewrite the payload under the existing id.
type resultRecord struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	TeamID        string    `json:"team_id"`
	TeamName      string    `json:"team_name"`
	TrackID       string    `json:"track_id"`
	City          string    `json:"city"`
	SpeedKmh      float64   `json:"speed_kmh"`
	PitStopSec    float64   `json:"pit_stop_sec"`
	TravelTimeSec float64   `json:"travel_time_sec"`
	LapTimeMs     int64     `json:"lap_time_ms"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func recordFromModel(r *model.RaceResult) resultRecord {
	return resultRecord{
		UserID:        string(r.UserID),
		Username:      r.Username,
		TeamID:        string(r.TeamID),
		TeamName:      r.TeamName,
		TrackID:       string(r.TrackID),
		City:          r.City,
		SpeedKmh:      r.SpeedKmh,
		PitStopSec:    r.PitStopSec,
		TravelTimeSec: r.TravelTimeSec,
		LapTimeMs:     r.LapTimeMs,
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func decodeResult(id model.ResultID, data []byte) (*model.RaceResult, error) {
	var rec resultRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &model.RaceResult{
		ID:            id,
		UserID:        model.UserID(rec.UserID),
		Username:      rec.Username,
		TeamID:        model.TeamID(rec.TeamID),
		TeamName:      rec.TeamName,
		TrackID:       model.TrackID(rec.TrackID),
		City:          rec.City,
		SpeedKmh:      rec.SpeedKmh,
		PitStopSec:    rec.PitStopSec,
		TravelTimeSec: rec.TravelTimeSec,
		LapTimeMs:     rec.LapTimeMs,
		UpdatedAt:     rec.UpdatedAt,
	}, nil
}
