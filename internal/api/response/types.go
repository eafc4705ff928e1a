package response

import (
	"time"

	"github.com/samber/lo"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/services/auth"
	"github.com/fritkotgp/raceapi/internal/services/race"
)

// User represents a user in API responses
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:        string(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Identity is the caller as carried by the access token
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// IdentityFromModel converts a model.Identity
func IdentityFromModel(i *model.Identity) Identity {
	return Identity{
		ID:       string(i.ID),
		Username: i.Username,
		Email:    i.Email,
	}
}

// RegisterResponse is the response for registration
type RegisterResponse struct {
	User User `json:"user"`
}

// LoginResponse is the response for login
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// LoginResponseFromSession creates a LoginResponse from a session
func LoginResponseFromSession(s *auth.Session) LoginResponse {
	return LoginResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      UserFromModel(&s.User),
	}
}

// Team represents a team
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TeamFromModel converts a model.Team
func TeamFromModel(t *model.Team) Team {
	return Team{
		ID:          string(t.ID),
		Name:        t.Name,
		Description: t.Description,
	}
}

// TeamsFromModel converts a list of teams
func TeamsFromModel(teams []*model.Team) []Team {
	return lo.Map(teams, func(t *model.Team, _ int) Team { return TeamFromModel(t) })
}

// Track represents a track
type Track struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	City     string  `json:"city"`
	LengthKm float64 `json:"lengthKm"`
}

// TrackFromModel converts a model.Track
func TrackFromModel(t *model.Track) Track {
	return Track{
		ID:       string(t.ID),
		Name:     t.Name,
		City:     t.City,
		LengthKm: t.LengthKm,
	}
}

// TracksFromModel converts a list of tracks
func TracksFromModel(tracks []*model.Track) []Track {
	return lo.Map(tracks, func(t *model.Track, _ int) Track { return TrackFromModel(t) })
}

// Lap is the outcome of one simulated lap
type Lap struct {
	SpeedKmh      float64 `json:"speedKmh"`
	PitStopSec    float64 `json:"pitStopSec"`
	TravelTimeSec float64 `json:"travelTimeSec"`
	LapTimeMs     int64   `json:"lapTimeMs"`
}

// LapFromModel converts a model.LapOutcome
func LapFromModel(l model.LapOutcome) Lap {
	return Lap{
		SpeedKmh:      l.SpeedKmh,
		PitStopSec:    l.PitStopSec,
		TravelTimeSec: l.TravelTimeSec,
		LapTimeMs:     l.LapTimeMs,
	}
}

// RaceResult is a stored best lap
type RaceResult struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	TeamID        string    `json:"teamId"`
	TeamName      string    `json:"teamName"`
	TrackID       string    `json:"trackId"`
	City          string    `json:"city"`
	SpeedKmh      float64   `json:"speedKmh"`
	PitStopSec    float64   `json:"pitStopSec"`
	TravelTimeSec float64   `json:"travelTimeSec"`
	LapTimeMs     int64     `json:"lapTimeMs"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RaceResultFromModel converts a model.RaceResult
func RaceResultFromModel(r *model.RaceResult) RaceResult {
	return RaceResult{
		ID:            string(r.ID),
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
		UpdatedAt:     r.UpdatedAt,
	}
}

// SimulatedResponse is returned for runs that were not saved
type SimulatedResponse struct {
	Status string `json:"status"`
	Result Lap    `json:"result"`
	Team   Team   `json:"team"`
	Track  Track  `json:"track"`
}

// SavedResponse is returned for saved runs. Result is the run, Best the stored record.
type SavedResponse struct {
	Status string     `json:"status"`
	ID     string     `json:"id"`
	Result Lap        `json:"result"`
	Best   RaceResult `json:"best"`
}

// SimulateResponseFromResult picks the response shape for a simulate outcome
func SimulateResponseFromResult(r *race.SimulateResult) any {
	if r.Status == race.StatusSimulated {
		return SimulatedResponse{
			Status: string(r.Status),
			Result: LapFromModel(r.Lap),
			Team:   TeamFromModel(r.Team),
			Track:  TrackFromModel(r.Track),
		}
	}
	return SavedResponse{
		Status: string(r.Status),
		ID:     string(r.ResultID),
		Result: LapFromModel(r.Lap),
		Best:   RaceResultFromModel(r.Best),
	}
}

// ResultsPage is a page of the caller's results
type ResultsPage struct {
	Results []RaceResult `json:"results"`
	SortBy  string       `json:"sortBy"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
}

// ResultsPageFromModel converts listed results and the query that produced them
func ResultsPageFromModel(results []*model.RaceResult, query model.ResultQuery) ResultsPage {
	return ResultsPage{
		Results: lo.Map(results, func(r *model.RaceResult, _ int) RaceResult { return RaceResultFromModel(r) }),
		SortBy:  string(query.Sort),
		Limit:   query.Limit,
		Offset:  query.Offset,
	}
}

// DeletedResponse confirms a deletion
type DeletedResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
