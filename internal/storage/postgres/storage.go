// Package postgres provides a PostgreSQL-backed race storage implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage"
)

const uniqueViolation = "23505"

// Storage persists race state in PostgreSQL
type Storage struct {
	pool *pgxpool.Pool
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open migrates the database at dbURL and connects a pool to it
func Open(ctx context.Context, dbURL string) (*Storage, error) {
	if err := Migrate(dbURL); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Storage{pool: pool}, nil
}

// NewWithPool wraps an existing pool; the schema must already be migrated
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close releases the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(user.ID), user.Username, model.NormalizeEmail(user.Email), user.PasswordHash, user.CreatedAt.UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, string(id))
	return scanUser(row)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`, model.NormalizeEmail(email))
	return scanUser(row)
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		id        string
		user      model.User
		createdAt time.Time
	)
	if err := row.Scan(&id, &user.Username, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.ID = model.UserID(id)
	user.CreatedAt = createdAt.UTC()
	return &user, nil
}

// Catalog operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO teams (id, name, description) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`,
		string(team.ID), team.Name, team.Description,
	)
	if err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description FROM teams WHERE id = $1`, string(id))
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	team, err := pgx.CollectExactlyOneRow(rows, scanTeam)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description FROM teams ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return pgx.CollectRows(rows, scanTeam)
}

func scanTeam(row pgx.CollectableRow) (*model.Team, error) {
	var id string
	var team model.Team
	if err := row.Scan(&id, &team.Name, &team.Description); err != nil {
		return nil, err
	}
	team.ID = model.TeamID(id)
	return &team, nil
}

func (s *Storage) SaveTrack(ctx context.Context, track *model.Track) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tracks (id, name, city, length_km) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, city = EXCLUDED.city, length_km = EXCLUDED.length_km`,
		string(track.ID), track.Name, track.City, track.LengthKm,
	)
	if err != nil {
		return fmt.Errorf("save track: %w", err)
	}
	return nil
}

func (s *Storage) GetTrack(ctx context.Context, id model.TrackID) (*model.Track, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, city, length_km FROM tracks WHERE id = $1`, string(id))
	if err != nil {
		return nil, fmt.Errorf("get track: %w", err)
	}
	track, err := pgx.CollectExactlyOneRow(rows, scanTrack)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTrackNotFound
		}
		return nil, fmt.Errorf("get track: %w", err)
	}
	return track, nil
}

func (s *Storage) ListTracks(ctx context.Context) ([]*model.Track, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, city, length_km FROM tracks ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return pgx.CollectRows(rows, scanTrack)
}

func scanTrack(row pgx.CollectableRow) (*model.Track, error) {
	var id string
	var track model.Track
	if err := row.Scan(&id, &track.Name, &track.City, &track.LengthKm); err != nil {
		return nil, err
	}
	track.ID = model.TrackID(id)
	return &track, nil
}

// Race result operations

const resultColumns = `id, user_id, username, team_id, team_name, track_id, city,
	speed_kmh, pit_stop_sec, travel_time_sec, lap_time_ms, updated_at`

func scanResult(row pgx.Row) (*model.RaceResult, error) {
	var (
		r                        model.RaceResult
		id, userID, teamID, trID string
		updatedAt                time.Time
	)
	err := row.Scan(&id, &userID, &r.Username, &teamID, &r.TeamName, &trID, &r.City,
		&r.SpeedKmh, &r.PitStopSec, &r.TravelTimeSec, &r.LapTimeMs, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrResultNotFound
		}
		return nil, fmt.Errorf("scan result: %w", err)
	}
	r.ID = model.ResultID(id)
	r.UserID = model.UserID(userID)
	r.TeamID = model.TeamID(teamID)
	r.TrackID = model.TrackID(trID)
	r.UpdatedAt = updatedAt.UTC()
	return &r, nil
}

func (s *Storage) FindResult(ctx context.Context, key model.ResultKey) (*model.RaceResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM race_results WHERE user_id = $1 AND team_id = $2 AND track_id = $3`,
		string(key.UserID), string(key.TeamID), string(key.TrackID))
	return scanResult(row)
}

// upsertBestSQL inserts the candidate or replaces the stored row only when strictly faster.
// xmax is zero only for freshly inserted tuples. No row is returned when the stored record is kept.
const upsertBestSQL = `
INSERT INTO race_results (` + resultColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT ON CONSTRAINT race_results_user_team_track_key DO UPDATE SET
	username = EXCLUDED.username,
	team_name = EXCLUDED.team_name,
	city = EXCLUDED.city,
	speed_kmh = EXCLUDED.speed_kmh,
	pit_stop_sec = EXCLUDED.pit_stop_sec,
	travel_time_sec = EXCLUDED.travel_time_sec,
	lap_time_ms = EXCLUDED.lap_time_ms,
	updated_at = EXCLUDED.updated_at
WHERE EXCLUDED.lap_time_ms < race_results.lap_time_ms
RETURNING (xmax = 0) AS created, ` + resultColumns

func (s *Storage) UpsertBestResult(ctx context.Context, candidate *model.RaceResult) (model.UpsertOutcome, *model.RaceResult, error) {
	var created bool
	rows, err := s.pool.Query(ctx, upsertBestSQL,
		string(candidate.ID), string(candidate.UserID), candidate.Username,
		string(candidate.TeamID), candidate.TeamName, string(candidate.TrackID), candidate.City,
		candidate.SpeedKmh, candidate.PitStopSec, candidate.TravelTimeSec, candidate.LapTimeMs,
		candidate.UpdatedAt.UTC(),
	)
	if err != nil {
		return "", nil, fmt.Errorf("upsert result: %w", err)
	}
	stored, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (*model.RaceResult, error) {
		var (
			r                        model.RaceResult
			id, userID, teamID, trID string
			updatedAt                time.Time
		)
		if err := row.Scan(&created, &id, &userID, &r.Username, &teamID, &r.TeamName, &trID, &r.City,
			&r.SpeedKmh, &r.PitStopSec, &r.TravelTimeSec, &r.LapTimeMs, &updatedAt); err != nil {
			return nil, err
		}
		r.ID = model.ResultID(id)
		r.UserID = model.UserID(userID)
		r.TeamID = model.TeamID(teamID)
		r.TrackID = model.TrackID(trID)
		r.UpdatedAt = updatedAt.UTC()
		return &r, nil
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// the conflicting row was kept; it is committed, so it is visible now
		kept, err := s.FindResult(ctx, candidate.Key())
		if err != nil {
			return "", nil, err
		}
		return model.OutcomeIgnored, kept, nil
	case err != nil:
		return "", nil, fmt.Errorf("upsert result: %w", err)
	case created:
		return model.OutcomeCreated, stored, nil
	default:
		return model.OutcomeUpdated, stored, nil
	}
}

func (s *Storage) ListResultsForUser(ctx context.Context, userID model.UserID, query model.ResultQuery) ([]*model.RaceResult, error) {
	order := `updated_at DESC, id ASC`
	if query.Sort == model.SortFastest {
		order = `lap_time_ms ASC, id ASC`
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM race_results WHERE user_id = $1 ORDER BY `+order+` LIMIT $2 OFFSET $3`,
		string(userID), query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.RaceResult, error) {
		return scanResult(row)
	})
}

func (s *Storage) GetResult(ctx context.Context, id model.ResultID) (*model.RaceResult, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+resultColumns+` FROM race_results WHERE id = $1`, string(id))
	return scanResult(row)
}

func (s *Storage) DeleteResult(ctx context.Context, id model.ResultID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM race_results WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrResultNotFound
	}
	return nil
}
