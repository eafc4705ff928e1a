package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage/memory"
	"github.com/fritkotgp/raceapi/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestSeedAddsEverything() {
	added, err := s.service.Seed(s.ctx)
	s.Require().NoError(err)
	s.Equal(len(DefaultTeams())+len(DefaultTracks()), added)

	teams, err := s.service.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Len(teams, 5)
	s.Equal("Bicky Burger Motorsport", teams[0].Name)

	tracks, err := s.service.ListTracks(s.ctx)
	s.Require().NoError(err)
	s.Len(tracks, 6)
}

func (s *ServiceSuite) TestSeedIsIdempotent() {
	_, err := s.service.Seed(s.ctx)
	s.Require().NoError(err)

	added, err := s.service.Seed(s.ctx)
	s.Require().NoError(err)
	s.Zero(added)

	teams, _ := s.service.ListTeams(s.ctx)
	s.Len(teams, 5)
}

func (s *ServiceSuite) TestSeedKeepsExistingEntries() {
	spa := model.TrackIDFromName("Spa-Francorchamps")
	s.Require().NoError(s.storage.SaveTrack(s.ctx, &model.Track{ID: spa, Name: "Spa-Francorchamps", City: "Stavelot", LengthKm: 7.0}))

	added, err := s.service.Seed(s.ctx)
	s.Require().NoError(err)
	s.Equal(len(DefaultTeams())+len(DefaultTracks())-1, added)

	track, err := s.service.GetTrack(s.ctx, string(spa))
	s.Require().NoError(err)
	s.Equal(7.0, track.LengthKm)
}

func (s *ServiceSuite) TestGetByID() {
	_, _ = s.service.Seed(s.ctx)

	team, err := s.service.GetTeam(s.ctx, string(model.TeamIDFromName("Frietkot Racing")))
	s.Require().NoError(err)
	s.Equal("Frietkot Racing", team.Name)

	track, err := s.service.GetTrack(s.ctx, string(model.TrackIDFromName("Monaco")))
	s.Require().NoError(err)
	s.Equal("Monte Carlo", track.City)
	s.Equal(3.337, track.LengthKm)
}

func (s *ServiceSuite) TestGetRejectsMalformedAndUnknownIDs() {
	_, err := s.service.GetTeam(s.ctx, "not-a-uuid")
	s.ErrorIs(err, model.ErrInvalidReference)

	_, err = s.service.GetTrack(s.ctx, "")
	s.ErrorIs(err, model.ErrMissingField)

	_, err = s.service.GetTeam(s.ctx, model.NewID())
	s.ErrorIs(err, model.ErrTeamNotFound)

	_, err = s.service.GetTrack(s.ctx, model.NewID())
	s.ErrorIs(err, model.ErrTrackNotFound)
}
