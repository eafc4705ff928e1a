package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	u := *user
	u.Email = model.NormalizeEmail(user.Email)
	data, err := json.Marshal(&u)
	if err != nil {
		return err
	}

	// Claim the email first so two registrations cannot both succeed
	claimed, err := s.client.SetNX(ctx, emailIndexKey(u.Email), string(u.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailExists
	}

	if err := s.client.Set(ctx, userKey(u.ID), data, 0).Err(); err != nil {
		_ = s.client.Del(ctx, emailIndexKey(u.Email)).Err()
		return err
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var user model.User
	if err := s.getJSON(ctx, userKey(id), &user, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

// Catalog operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	data, err := json.Marshal(team)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, teamKey(team.ID), data, 0)
	pipe.SAdd(ctx, teamsIndexKey(), string(team.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	var team model.Team
	if err := s.getJSON(ctx, teamKey(id), &team, model.ErrTeamNotFound); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	ids, err := s.client.SMembers(ctx, teamsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = teamKey(model.TeamID(id))
	}

	teams, err := mgetJSON[model.Team](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (s *Storage) SaveTrack(ctx context.Context, track *model.Track) error {
	data, err := json.Marshal(track)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, trackKey(track.ID), data, 0)
	pipe.SAdd(ctx, tracksIndexKey(), string(track.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetTrack(ctx context.Context, id model.TrackID) (*model.Track, error) {
	var track model.Track
	if err := s.getJSON(ctx, trackKey(id), &track, model.ErrTrackNotFound); err != nil {
		return nil, err
	}
	return &track, nil
}

func (s *Storage) ListTracks(ctx context.Context) ([]*model.Track, error) {
	ids, err := s.client.SMembers(ctx, tracksIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = trackKey(model.TrackID(id))
	}

	tracks, err := mgetJSON[model.Track](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Name < tracks[j].Name })
	return tracks, nil
}

// Race result operations

func (s *Storage) FindResult(ctx context.Context, key model.ResultKey) (*model.RaceResult, error) {
	id, err := s.client.HGet(ctx, resultIndexKey(key), "id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrResultNotFound
		}
		return nil, err
	}
	return s.GetResult(ctx, model.ResultID(id))
}

func (s *Storage) UpsertBestResult(ctx context.Context, candidate *model.RaceResult) (model.UpsertOutcome, *model.RaceResult, error) {
	payload, err := json.Marshal(recordFromModel(candidate))
	if err != nil {
		return "", nil, err
	}

	keys := []string{
		resultIndexKey(candidate.Key()),
		latestIndexKey(candidate.UserID),
		fastestIndexKey(candidate.UserID),
	}
	reply, err := upsertBestScript.Run(ctx, s.client, keys,
		string(candidate.ID),
		candidate.LapTimeMs,
		latestScore(candidate.UpdatedAt),
		string(payload),
		resultKeyPrefix(),
	).StringSlice()
	if err != nil {
		return "", nil, fmt.Errorf("upsert best result: %w", err)
	}
	if len(reply) != 3 {
		return "", nil, fmt.Errorf("upsert best result: unexpected reply %v", reply)
	}

	outcome := model.UpsertOutcome(reply[0])
	if reply[2] == "" {
		// index points at a payload that is gone; treat as missing
		return "", nil, model.ErrResultNotFound
	}
	stored, err := decodeResult(model.ResultID(reply[1]), []byte(reply[2]))
	if err != nil {
		return "", nil, err
	}
	return outcome, stored, nil
}

func (s *Storage) ListResultsForUser(ctx context.Context, userID model.UserID, query model.ResultQuery) ([]*model.RaceResult, error) {
	indexKey := latestIndexKey(userID)
	if query.Sort == model.SortFastest {
		indexKey = fastestIndexKey(userID)
	}

	start := int64(query.Offset)
	stop := start + int64(query.Limit) - 1
	ids, err := s.client.ZRange(ctx, indexKey, start, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.RaceResult{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = resultKey(model.ResultID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*model.RaceResult, 0, len(values))
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // deleted between ZRANGE and MGET
		}
		result, err := decodeResult(model.ResultID(ids[i]), []byte(str))
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Storage) GetResult(ctx context.Context, id model.ResultID) (*model.RaceResult, error) {
	data, err := s.client.Get(ctx, resultKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrResultNotFound
		}
		return nil, err
	}
	return decodeResult(id, data)
}

func (s *Storage) DeleteResult(ctx context.Context, id model.ResultID) error {
	result, err := s.GetResult(ctx, id)
	if err != nil {
		return err
	}

	keys := []string{
		resultKey(id),
		resultIndexKey(result.Key()),
		latestIndexKey(result.UserID),
		fastestIndexKey(result.UserID),
	}
	deleted, err := deleteResultScript.Run(ctx, s.client, keys, string(id)).Int()
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if deleted == 0 {
		return model.ErrResultNotFound
	}
	return nil
}

// helpers

func (s *Storage) getJSON(ctx context.Context, key string, dst any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dst)
}

func mgetJSON[T any](ctx context.Context, client *redis.Client, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}
	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	items := make([]*T, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(str), &item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

// latestScore orders newest first in an ascending ZSET
func latestScore(t time.Time) string {
	return strconv.FormatInt(-t.UnixMilli(), 10)
}
