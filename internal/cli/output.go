package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fritkotgp/raceapi/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.HealthResponse:
		o.printf("Status: %s\n", v.Status)
		o.printf("Message: %s\n", v.Message)
	case response.RegisterResponse:
		o.printUser(v.User)
	case response.LoginResponse:
		o.printUser(v.User)
		o.printf("Token expires: %s\n", v.ExpiresAt.Local().Format(time.RFC1123))
	case response.Identity:
		o.printf("Driver: %s (%s)\n", v.Username, v.ID)
		o.printf("Email: %s\n", v.Email)
	case []response.Team:
		o.printTeams(v)
	case []response.Track:
		o.printTracks(v)
	case SimulateResult:
		o.printSimulateResult(v)
	case response.RaceResult:
		o.printRaceResult(v)
	case response.ResultsPage:
		o.printResultsPage(v)
	case response.DeletedResponse:
		o.printf("Deleted result %s\n", v.ID)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// SimulateResult holds either shape of a simulate response.
// Team and Track are set for unsaved runs, ID and Best for saved ones.
type SimulateResult struct {
	Status string               `json:"status"`
	ID     string               `json:"id,omitempty"`
	Result response.Lap         `json:"result"`
	Team   *response.Team       `json:"team,omitempty"`
	Track  *response.Track      `json:"track,omitempty"`
	Best   *response.RaceResult `json:"best,omitempty"`
}

// FormatLapTime renders milliseconds as m:ss.mmm
func FormatLapTime(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	minutes := int64(d / time.Minute)
	rest := d - time.Duration(minutes)*time.Minute
	return fmt.Sprintf("%d:%06.3f", minutes, rest.Seconds())
}

func (o *Output) printUser(u response.User) {
	o.printf("Driver: %s (%s)\n", u.Username, u.ID)
	o.printf("Email: %s\n", u.Email)
}

func (o *Output) printTeams(teams []response.Team) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, t := range teams {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Description)
	}
	_ = tw.Flush()
}

func (o *Output) printTracks(tracks []response.Track) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tCITY\tLENGTH")
	for _, t := range tracks {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f km\n", t.ID, t.Name, t.City, t.LengthKm)
	}
	_ = tw.Flush()
}

func (o *Output) printLap(l response.Lap) {
	o.printf("Speed: %.2f km/h\n", l.SpeedKmh)
	o.printf("Pit stop: %.2f s\n", l.PitStopSec)
	o.printf("Travel time: %.2f s\n", l.TravelTimeSec)
	o.printf("Lap time: %s\n", FormatLapTime(l.LapTimeMs))
}

func (o *Output) printSimulateResult(r SimulateResult) {
	o.printf("Status: %s\n", r.Status)
	if r.Team != nil && r.Track != nil {
		o.printf("Team: %s\n", r.Team.Name)
		o.printf("Track: %s (%s, %.3f km)\n", r.Track.Name, r.Track.City, r.Track.LengthKm)
	}
	o.printLap(r.Result)
	if r.Best != nil {
		o.printf("Best lap: %s (%s)\n", FormatLapTime(r.Best.LapTimeMs), r.Best.ID)
	}
}

func (o *Output) printRaceResult(r response.RaceResult) {
	o.printf("Result: %s\n", r.ID)
	o.printf("Team: %s\n", r.TeamName)
	o.printf("City: %s\n", r.City)
	o.printLap(response.Lap{
		SpeedKmh:      r.SpeedKmh,
		PitStopSec:    r.PitStopSec,
		TravelTimeSec: r.TravelTimeSec,
		LapTimeMs:     r.LapTimeMs,
	})
	o.printf("Updated: %s\n", r.UpdatedAt.Local().Format(time.RFC1123))
}

func (o *Output) printResultsPage(p response.ResultsPage) {
	if len(p.Results) == 0 {
		o.printf("No results (sort=%s, offset=%d)\n", p.SortBy, p.Offset)
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTEAM\tCITY\tLAP\tUPDATED")
	for _, r := range p.Results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.TeamName, r.City, FormatLapTime(r.LapTimeMs), r.UpdatedAt.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
	o.printf("sort=%s limit=%d offset=%d\n", p.SortBy, p.Limit, p.Offset)
}
