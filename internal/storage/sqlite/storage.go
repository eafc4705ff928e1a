// Package sqlite provides a SQLite-backed race storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage"
)

// Storage persists race state in a SQLite file
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path, applying migrations first
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)

	if err := Migrate(cleanPath); err != nil {
		return nil, err
	}

	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single writer connection serializes the read-compare-write of upserts
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(user.ID), user.Username, model.NormalizeEmail(user.Email), user.PasswordHash, toMillis(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, string(id))
	return scanUser(row)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, model.NormalizeEmail(email))
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user      model.User
		createdAt int64
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return &user, nil
}

// Catalog operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, description) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description`,
		string(team.ID), team.Name, team.Description,
	)
	if err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	var team model.Team
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM teams WHERE id = ?`, string(id),
	).Scan(&team.ID, &team.Name, &team.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return &team, nil
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM teams ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := []*model.Team{}
	for rows.Next() {
		var team model.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Description); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, &team)
	}
	return teams, rows.Err()
}

func (s *Storage) SaveTrack(ctx context.Context, track *model.Track) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracks (id, name, city, length_km) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, city = excluded.city, length_km = excluded.length_km`,
		string(track.ID), track.Name, track.City, track.LengthKm,
	)
	if err != nil {
		return fmt.Errorf("save track: %w", err)
	}
	return nil
}

func (s *Storage) GetTrack(ctx context.Context, id model.TrackID) (*model.Track, error) {
	var track model.Track
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, city, length_km FROM tracks WHERE id = ?`, string(id),
	).Scan(&track.ID, &track.Name, &track.City, &track.LengthKm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTrackNotFound
		}
		return nil, fmt.Errorf("get track: %w", err)
	}
	return &track, nil
}

func (s *Storage) ListTracks(ctx context.Context) ([]*model.Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, city, length_km FROM tracks ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	tracks := []*model.Track{}
	for rows.Next() {
		var track model.Track
		if err := rows.Scan(&track.ID, &track.Name, &track.City, &track.LengthKm); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, &track)
	}
	return tracks, rows.Err()
}

// Race result operations

const resultColumns = `id, user_id, username, team_id, team_name, track_id, city,
	speed_kmh, pit_stop_sec, travel_time_sec, lap_time_ms, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*model.RaceResult, error) {
	var (
		r         model.RaceResult
		updatedAt int64
	)
	err := row.Scan(&r.ID, &r.UserID, &r.Username, &r.TeamID, &r.TeamName, &r.TrackID, &r.City,
		&r.SpeedKmh, &r.PitStopSec, &r.TravelTimeSec, &r.LapTimeMs, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrResultNotFound
		}
		return nil, fmt.Errorf("scan result: %w", err)
	}
	r.UpdatedAt = fromMillis(updatedAt)
	return &r, nil
}

func (s *Storage) FindResult(ctx context.Context, key model.ResultKey) (*model.RaceResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM race_results WHERE user_id = ? AND team_id = ? AND track_id = ?`,
		string(key.UserID), string(key.TeamID), string(key.TrackID))
	return scanResult(row)
}

// upsertBestSQL inserts the candidate or replaces the stored row only when strictly faster.
// No row is returned when the stored record is kept.
const upsertBestSQL = `
INSERT INTO race_results (` + resultColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, team_id, track_id) DO UPDATE SET
	username = excluded.username,
	team_name = excluded.team_name,
	city = excluded.city,
	speed_kmh = excluded.speed_kmh,
	pit_stop_sec = excluded.pit_stop_sec,
	travel_time_sec = excluded.travel_time_sec,
	lap_time_ms = excluded.lap_time_ms,
	updated_at = excluded.updated_at
WHERE excluded.lap_time_ms < race_results.lap_time_ms
RETURNING id`

func (s *Storage) UpsertBestResult(ctx context.Context, candidate *model.RaceResult) (model.UpsertOutcome, *model.RaceResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		storedID model.ResultID
		outcome  model.UpsertOutcome
	)
	err = tx.QueryRowContext(ctx, upsertBestSQL,
		string(candidate.ID), string(candidate.UserID), candidate.Username,
		string(candidate.TeamID), candidate.TeamName, string(candidate.TrackID), candidate.City,
		candidate.SpeedKmh, candidate.PitStopSec, candidate.TravelTimeSec, candidate.LapTimeMs,
		toMillis(candidate.UpdatedAt),
	).Scan(&storedID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		outcome = model.OutcomeIgnored
	case err != nil:
		return "", nil, fmt.Errorf("upsert result: %w", err)
	case storedID == candidate.ID:
		outcome = model.OutcomeCreated
	default:
		outcome = model.OutcomeUpdated
	}

	key := candidate.Key()
	stored, err := scanResult(tx.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM race_results WHERE user_id = ? AND team_id = ? AND track_id = ?`,
		string(key.UserID), string(key.TeamID), string(key.TrackID)))
	if err != nil {
		return "", nil, err
	}

	if err := tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("commit upsert: %w", err)
	}
	return outcome, stored, nil
}

func (s *Storage) ListResultsForUser(ctx context.Context, userID model.UserID, query model.ResultQuery) ([]*model.RaceResult, error) {
	order := `updated_at DESC, id ASC`
	if query.Sort == model.SortFastest {
		order = `lap_time_ms ASC, id ASC`
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM race_results WHERE user_id = ? ORDER BY `+order+` LIMIT ? OFFSET ?`,
		string(userID), query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	results := []*model.RaceResult{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func (s *Storage) GetResult(ctx context.Context, id model.ResultID) (*model.RaceResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM race_results WHERE id = ?`, string(id))
	return scanResult(row)
}

func (s *Storage) DeleteResult(ctx context.Context, id model.ResultID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM race_results WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if n == 0 {
		return model.ErrResultNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
