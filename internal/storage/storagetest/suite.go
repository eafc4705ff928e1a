// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage"
)

// Suite runs backend-agnostic storage tests. Embed it or run it directly with NewStorage set.
type Suite struct {
	suite.Suite

	// NewStorage returns an empty store for each test
	NewStorage func(t *testing.T) storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

// BaseTime is the reference timestamp used by fixtures
var BaseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

var (
	teamA  = model.TeamIDFromName("Frietkot Racing")
	teamB  = model.TeamIDFromName("Bicky Burger Motorsport")
	trackA = model.TrackIDFromName("Spa-Francorchamps")
	trackB = model.TrackIDFromName("Circuit Zolder")
)

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Store = s.NewStorage(s.T())
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

// Candidate builds a result for user on teamA/trackA with the given lap time
func Candidate(userID model.UserID, lapTimeMs int64, at time.Time) *model.RaceResult {
	return CandidateFor(userID, teamA, trackA, lapTimeMs, at)
}

// CandidateFor builds a result for an explicit composite key
func CandidateFor(userID model.UserID, teamID model.TeamID, trackID model.TrackID, lapTimeMs int64, at time.Time) *model.RaceResult {
	return &model.RaceResult{
		ID:            model.ResultID(model.NewID()),
		UserID:        userID,
		Username:      "user-" + string(userID),
		TeamID:        teamID,
		TeamName:      "Team " + string(teamID)[:8],
		TrackID:       trackID,
		City:          "City " + string(trackID)[:8],
		SpeedKmh:      275.5,
		PitStopSec:    22.25,
		TravelTimeSec: float64(lapTimeMs)/1000 - 22.25,
		LapTimeMs:     lapTimeMs,
		UpdatedAt:     at,
	}
}

func (s *Suite) upsert(candidate *model.RaceResult) (model.UpsertOutcome, *model.RaceResult) {
	outcome, stored, err := s.Store.UpsertBestResult(s.Ctx, candidate)
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	return outcome, stored
}

// User tests

func (s *Suite) TestCreateAndGetUser() {
	user := &model.User{
		ID:           model.UserID(model.NewID()),
		Username:     "Alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    BaseTime,
	}
	s.Require().NoError(s.Store.CreateUser(s.Ctx, user))

	got, err := s.Store.GetUser(s.Ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(cmp.Diff(user, got))
}

func (s *Suite) TestGetUserByEmailIsCaseInsensitive() {
	user := &model.User{ID: model.UserID(model.NewID()), Username: "Bob", Email: "Bob@Example.com", CreatedAt: BaseTime}
	s.Require().NoError(s.Store.CreateUser(s.Ctx, user))

	got, err := s.Store.GetUserByEmail(s.Ctx, "  bob@EXAMPLE.com")
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)
	s.Equal("bob@example.com", got.Email)
}

func (s *Suite) TestCreateUserRejectsDuplicateEmail() {
	first := &model.User{ID: model.UserID(model.NewID()), Username: "A", Email: "same@example.com", CreatedAt: BaseTime}
	second := &model.User{ID: model.UserID(model.NewID()), Username: "B", Email: "SAME@example.com", CreatedAt: BaseTime}
	s.Require().NoError(s.Store.CreateUser(s.Ctx, first))

	err := s.Store.CreateUser(s.Ctx, second)
	s.ErrorIs(err, model.ErrEmailExists)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Store.GetUser(s.Ctx, model.UserID(model.NewID()))
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.Store.GetUserByEmail(s.Ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Catalog tests

func (s *Suite) TestSaveAndListTeams() {
	s.Require().NoError(s.Store.SaveTeam(s.Ctx, &model.Team{ID: teamB, Name: "Bicky Burger Motorsport", Description: "b"}))
	s.Require().NoError(s.Store.SaveTeam(s.Ctx, &model.Team{ID: teamA, Name: "Frietkot Racing", Description: "a"}))

	teams, err := s.Store.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 2)
	s.Equal("Bicky Burger Motorsport", teams[0].Name)
	s.Equal("Frietkot Racing", teams[1].Name)

	got, err := s.Store.GetTeam(s.Ctx, teamA)
	s.Require().NoError(err)
	s.Equal("a", got.Description)
}

func (s *Suite) TestSaveTeamOverwrites() {
	s.Require().NoError(s.Store.SaveTeam(s.Ctx, &model.Team{ID: teamA, Name: "Frietkot Racing", Description: "old"}))
	s.Require().NoError(s.Store.SaveTeam(s.Ctx, &model.Team{ID: teamA, Name: "Frietkot Racing", Description: "new"}))

	teams, err := s.Store.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 1)
	s.Equal("new", teams[0].Description)
}

func (s *Suite) TestSaveAndListTracks() {
	spa := &model.Track{ID: trackA, Name: "Spa-Francorchamps", City: "Stavelot", LengthKm: 7.004}
	zolder := &model.Track{ID: trackB, Name: "Circuit Zolder", City: "Heusden-Zolder", LengthKm: 4.011}
	s.Require().NoError(s.Store.SaveTrack(s.Ctx, spa))
	s.Require().NoError(s.Store.SaveTrack(s.Ctx, zolder))

	tracks, err := s.Store.ListTracks(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(tracks, 2)
	s.Empty(cmp.Diff(zolder, tracks[0]))
	s.Empty(cmp.Diff(spa, tracks[1]))
}

func (s *Suite) TestCatalogNotFound() {
	_, err := s.Store.GetTeam(s.Ctx, model.TeamIDFromName("Nobody"))
	s.ErrorIs(err, model.ErrTeamNotFound)

	_, err = s.Store.GetTrack(s.Ctx, model.TrackIDFromName("Nowhere"))
	s.ErrorIs(err, model.ErrTrackNotFound)
}

func (s *Suite) TestEmptyCatalogListsAreEmpty() {
	teams, err := s.Store.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Empty(teams)

	tracks, err := s.Store.ListTracks(s.Ctx)
	s.Require().NoError(err)
	s.Empty(tracks)
}

// Upsert tests

func (s *Suite) TestUpsertCreatesWhenAbsent() {
	candidate := Candidate("u1", 90000, BaseTime)

	outcome, stored := s.upsert(candidate)

	s.Equal(model.OutcomeCreated, outcome)
	s.Empty(cmp.Diff(candidate, stored))

	found, err := s.Store.FindResult(s.Ctx, candidate.Key())
	s.Require().NoError(err)
	s.Empty(cmp.Diff(candidate, found))
}

func (s *Suite) TestUpsertIgnoresEqualLap() {
	first := Candidate("u1", 90000, BaseTime)
	s.upsert(first)

	same := Candidate("u1", 90000, BaseTime.Add(time.Minute))
	outcome, stored := s.upsert(same)

	s.Equal(model.OutcomeIgnored, outcome)
	s.Empty(cmp.Diff(first, stored))
}

func (s *Suite) TestUpsertIgnoresSlowerLapAndLeavesRecordUntouched() {
	first := Candidate("u1", 90000, BaseTime)
	s.upsert(first)

	slower := Candidate("u1", 95000, BaseTime.Add(time.Minute))
	slower.SpeedKmh = 251
	outcome, stored := s.upsert(slower)

	s.Equal(model.OutcomeIgnored, outcome)
	s.Equal(first.ID, stored.ID)

	got, err := s.Store.GetResult(s.Ctx, first.ID)
	s.Require().NoError(err)
	s.Empty(cmp.Diff(first, got))
}

func (s *Suite) TestUpsertReplacesAllFieldsWhenFaster() {
	first := Candidate("u1", 90000, BaseTime)
	s.upsert(first)

	faster := Candidate("u1", 85000, BaseTime.Add(time.Hour))
	faster.Username = "renamed"
	faster.SpeedKmh = 299.99
	faster.PitStopSec = 20.01
	faster.TravelTimeSec = 64.99
	outcome, stored := s.upsert(faster)

	s.Equal(model.OutcomeUpdated, outcome)

	want := *faster
	want.ID = first.ID
	s.Empty(cmp.Diff(&want, stored))

	got, err := s.Store.GetResult(s.Ctx, first.ID)
	s.Require().NoError(err)
	s.Empty(cmp.Diff(&want, got))

	_, err = s.Store.GetResult(s.Ctx, faster.ID)
	s.ErrorIs(err, model.ErrResultNotFound)
}

func (s *Suite) TestBestResultScenario() {
	outcome, created := s.upsert(Candidate("userA", 90000, BaseTime))
	s.Equal(model.OutcomeCreated, outcome)

	outcome, stored := s.upsert(Candidate("userA", 95000, BaseTime.Add(time.Minute)))
	s.Equal(model.OutcomeIgnored, outcome)
	s.Equal(created.ID, stored.ID)
	s.Equal(int64(90000), stored.LapTimeMs)

	outcome, stored = s.upsert(Candidate("userA", 85000, BaseTime.Add(2*time.Minute)))
	s.Equal(model.OutcomeUpdated, outcome)
	s.Equal(created.ID, stored.ID)
	s.Equal(int64(85000), stored.LapTimeMs)

	results, err := s.Store.ListResultsForUser(s.Ctx, "userA", model.DefaultResultQuery())
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(int64(85000), results[0].LapTimeMs)
}

func (s *Suite) TestUpsertKeepsKeysSeparate() {
	s.upsert(CandidateFor("u1", teamA, trackA, 90000, BaseTime))
	outcome, _ := s.upsert(CandidateFor("u1", teamB, trackA, 95000, BaseTime))
	s.Equal(model.OutcomeCreated, outcome)
	outcome, _ = s.upsert(CandidateFor("u1", teamA, trackB, 95000, BaseTime))
	s.Equal(model.OutcomeCreated, outcome)
	outcome, _ = s.upsert(CandidateFor("u2", teamA, trackA, 95000, BaseTime))
	s.Equal(model.OutcomeCreated, outcome)

	results, err := s.Store.ListResultsForUser(s.Ctx, "u1", model.DefaultResultQuery())
	s.Require().NoError(err)
	s.Len(results, 3)
}

func (s *Suite) TestConcurrentUpsertsKeepOneRecord() {
	const writers = 24
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[model.UpsertOutcome]int{}
		ids      = map[model.ResultID]bool{}
		errs     []error
	)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidate := Candidate("racer", int64(100000-i*100), BaseTime.Add(time.Duration(i)*time.Second))
			outcome, stored, err := s.Store.UpsertBestResult(s.Ctx, candidate)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			outcomes[outcome]++
			ids[stored.ID] = true
		}(i)
	}
	wg.Wait()

	s.Require().Empty(errs)
	s.Equal(1, outcomes[model.OutcomeCreated], "exactly one writer creates the record")
	s.Len(ids, 1, "every writer observes the same record")
	s.Equal(writers, outcomes[model.OutcomeCreated]+outcomes[model.OutcomeUpdated]+outcomes[model.OutcomeIgnored])

	results, err := s.Store.ListResultsForUser(s.Ctx, "racer", model.DefaultResultQuery())
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(int64(100000-(writers-1)*100), results[0].LapTimeMs, "fastest lap wins")
}

func (s *Suite) TestFindResultNotFound() {
	_, err := s.Store.FindResult(s.Ctx, model.ResultKey{UserID: "u1", TeamID: teamA, TrackID: trackA})
	s.ErrorIs(err, model.ErrResultNotFound)
}

// Listing tests

func (s *Suite) seedListing() {
	// latest order: B(3m) C(2m) A(1m); fastest order: C(80000) A(85000) B(90000)
	s.upsert(CandidateFor("lister", teamA, trackA, 85000, BaseTime.Add(1*time.Minute)))
	s.upsert(CandidateFor("lister", teamA, trackB, 90000, BaseTime.Add(3*time.Minute)))
	s.upsert(CandidateFor("lister", teamB, trackA, 80000, BaseTime.Add(2*time.Minute)))
	s.upsert(CandidateFor("someone-else", teamA, trackA, 1000, BaseTime.Add(10*time.Minute)))
}

func laps(results []*model.RaceResult) []int64 {
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.LapTimeMs
	}
	return out
}

func (s *Suite) TestListLatestFirst() {
	s.seedListing()

	results, err := s.Store.ListResultsForUser(s.Ctx, "lister", model.NewResultQuery(model.SortLatest, 10, 0))
	s.Require().NoError(err)
	s.Equal([]int64{90000, 80000, 85000}, laps(results))
	for _, r := range results {
		s.Equal(model.UserID("lister"), r.UserID)
	}
}

func (s *Suite) TestListFastestFirst() {
	s.seedListing()

	results, err := s.Store.ListResultsForUser(s.Ctx, "lister", model.NewResultQuery(model.SortFastest, 10, 0))
	s.Require().NoError(err)
	s.Equal([]int64{80000, 85000, 90000}, laps(results))
}

func (s *Suite) TestListPaginates() {
	s.seedListing()

	page, err := s.Store.ListResultsForUser(s.Ctx, "lister", model.NewResultQuery(model.SortFastest, 2, 1))
	s.Require().NoError(err)
	s.Equal([]int64{85000, 90000}, laps(page))

	page, err = s.Store.ListResultsForUser(s.Ctx, "lister", model.NewResultQuery(model.SortFastest, 1, 0))
	s.Require().NoError(err)
	s.Equal([]int64{80000}, laps(page))

	page, err = s.Store.ListResultsForUser(s.Ctx, "lister", model.NewResultQuery(model.SortFastest, 10, 3))
	s.Require().NoError(err)
	s.Empty(page)
}

func (s *Suite) TestListUnknownUserIsEmpty() {
	s.seedListing()

	results, err := s.Store.ListResultsForUser(s.Ctx, "ghost", model.DefaultResultQuery())
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *Suite) TestListReflectsUpdatedTimestamp() {
	s.seedListing()
	// improving the oldest record moves it to the front of the latest listing
	s.upsert(CandidateFor("lister", teamA, trackA, 70000, BaseTime.Add(5*time.Minute)))

	results, err := s.Store.ListResultsForUser(s.Ctx, "lister", model.NewResultQuery(model.SortLatest, 10, 0))
	s.Require().NoError(err)
	s.Equal([]int64{70000, 90000, 80000}, laps(results))

	results, err = s.Store.ListResultsForUser(s.Ctx, "lister", model.NewResultQuery(model.SortFastest, 10, 0))
	s.Require().NoError(err)
	s.Equal([]int64{70000, 80000, 90000}, laps(results))
}

// Get / delete tests

func (s *Suite) TestGetResultNotFound() {
	_, err := s.Store.GetResult(s.Ctx, model.ResultID(model.NewID()))
	s.ErrorIs(err, model.ErrResultNotFound)
}

func (s *Suite) TestGetResultExposesOwner() {
	_, stored := s.upsert(Candidate("owner-1", 90000, BaseTime))

	got, err := s.Store.GetResult(s.Ctx, stored.ID)
	s.Require().NoError(err)
	s.Equal(model.UserID("owner-1"), got.UserID)
}

func (s *Suite) TestDeleteResult() {
	_, stored := s.upsert(Candidate("u1", 90000, BaseTime))

	s.Require().NoError(s.Store.DeleteResult(s.Ctx, stored.ID))

	_, err := s.Store.GetResult(s.Ctx, stored.ID)
	s.ErrorIs(err, model.ErrResultNotFound)
	_, err = s.Store.FindResult(s.Ctx, stored.Key())
	s.ErrorIs(err, model.ErrResultNotFound)

	results, err := s.Store.ListResultsForUser(s.Ctx, "u1", model.DefaultResultQuery())
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *Suite) TestDeleteThenUpsertCreatesAgain() {
	_, stored := s.upsert(Candidate("u1", 90000, BaseTime))
	s.Require().NoError(s.Store.DeleteResult(s.Ctx, stored.ID))

	outcome, again := s.upsert(Candidate("u1", 99000, BaseTime.Add(time.Minute)))
	s.Equal(model.OutcomeCreated, outcome)
	s.NotEqual(stored.ID, again.ID)
	s.Equal(int64(99000), again.LapTimeMs)
}

func (s *Suite) TestDeleteResultNotFound() {
	err := s.Store.DeleteResult(s.Ctx, model.ResultID(model.NewID()))
	s.ErrorIs(err, model.ErrResultNotFound)
}
