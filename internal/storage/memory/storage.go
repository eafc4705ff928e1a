package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are stored by value and copied on the way in and out.
type Storage struct {
	mu sync.RWMutex

	users      map[model.UserID]model.User
	emailIndex map[string]model.UserID
	teams      map[model.TeamID]model.Team
	tracks     map[model.TrackID]model.Track
	results    map[model.ResultID]model.RaceResult
	resultKeys map[model.ResultKey]model.ResultID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:      make(map[model.UserID]model.User),
		emailIndex: make(map[string]model.UserID),
		teams:      make(map[model.TeamID]model.Team),
		tracks:     make(map[model.TrackID]model.Track),
		results:    make(map[model.ResultID]model.RaceResult),
		resultKeys: make(map[model.ResultKey]model.ResultID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := model.NormalizeEmail(user.Email)
	if _, ok := s.emailIndex[email]; ok {
		return model.ErrEmailExists
	}
	u := *user
	u.Email = email
	s.users[u.ID] = u
	s.emailIndex[email] = u.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[model.NormalizeEmail(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user := s.users[id]
	return &user, nil
}

// Catalog operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = *team
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	return &team, nil
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := make([]*model.Team, 0, len(s.teams))
	for _, team := range s.teams {
		t := team
		teams = append(teams, &t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (s *Storage) SaveTrack(ctx context.Context, track *model.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[track.ID] = *track
	return nil
}

func (s *Storage) GetTrack(ctx context.Context, id model.TrackID) (*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	track, ok := s.tracks[id]
	if !ok {
		return nil, model.ErrTrackNotFound
	}
	return &track, nil
}

func (s *Storage) ListTracks(ctx context.Context) ([]*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tracks := make([]*model.Track, 0, len(s.tracks))
	for _, track := range s.tracks {
		t := track
		tracks = append(tracks, &t)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Name < tracks[j].Name })
	return tracks, nil
}

// Race result operations

func (s *Storage) FindResult(ctx context.Context, key model.ResultKey) (*model.RaceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.resultKeys[key]
	if !ok {
		return nil, model.ErrResultNotFound
	}
	result := s.results[id]
	return &result, nil
}

// UpsertBestResult holds the write lock across lookup and write
func (s *Storage) UpsertBestResult(ctx context.Context, candidate *model.RaceResult) (model.UpsertOutcome, *model.RaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := candidate.Key()
	id, ok := s.resultKeys[key]
	if !ok {
		stored := *candidate
		s.results[stored.ID] = stored
		s.resultKeys[key] = stored.ID
		return model.OutcomeCreated, &stored, nil
	}

	existing := s.results[id]
	if !candidate.IsFasterThan(&existing) {
		return model.OutcomeIgnored, &existing, nil
	}

	existing.ReplaceWith(candidate)
	s.results[id] = existing
	stored := existing
	return model.OutcomeUpdated, &stored, nil
}

func (s *Storage) ListResultsForUser(ctx context.Context, userID model.UserID, query model.ResultQuery) ([]*model.RaceResult, error) {
	s.mu.RLock()
	var results []*model.RaceResult
	for _, result := range s.results {
		if result.UserID == userID {
			r := result
			results = append(results, &r)
		}
	}
	s.mu.RUnlock()

	storage.SortResults(results, query.Sort)
	return storage.Page(results, query), nil
}

func (s *Storage) GetResult(ctx context.Context, id model.ResultID) (*model.RaceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return nil, model.ErrResultNotFound
	}
	return &result, nil
}

func (s *Storage) DeleteResult(ctx context.Context, id model.ResultID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[id]
	if !ok {
		return model.ErrResultNotFound
	}
	delete(s.results, id)
	delete(s.resultKeys, result.Key())
	return nil
}
