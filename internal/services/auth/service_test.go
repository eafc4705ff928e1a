package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/fritkotgp/raceapi/internal/dependencies/mocks"
	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage/memory"
	"github.com/fritkotgp/raceapi/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	verifier := NewVerifier("test-secret", time.Hour, s.clock)
	s.service = New(s.storage, s.clock, verifier, testutil.NopLogger(), Config{BcryptCost: bcrypt.MinCost})
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	user, err := s.service.Register(s.ctx, "Jan", "Jan@Example.be", "frietjes")
	s.Require().NoError(err)

	s.NotEmpty(user.ID)
	s.Equal("Jan", user.Username)
	s.Equal("jan@example.be", user.Email)
	s.Equal(s.clock.Now(), user.CreatedAt)
}

func (s *ServiceSuite) TestRegisterHashesPassword() {
	user, _ := s.service.Register(s.ctx, "Jan", "jan@example.be", "frietjes")

	stored, err := s.storage.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.NotEqual("frietjes", stored.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("frietjes")))
}

func (s *ServiceSuite) TestRegisterRequiresFields() {
	_, err := s.service.Register(s.ctx, " ", "jan@example.be", "frietjes")
	s.ErrorIs(err, model.ErrMissingField)

	_, err = s.service.Register(s.ctx, "Jan", "", "frietjes")
	s.ErrorIs(err, model.ErrMissingField)

	_, err = s.service.Register(s.ctx, "Jan", "jan@example.be", "")
	s.ErrorIs(err, model.ErrMissingField)
}

func (s *ServiceSuite) TestRegisterFailsIfEmailExists() {
	_, _ = s.service.Register(s.ctx, "Jan", "jan@example.be", "frietjes")

	_, err := s.service.Register(s.ctx, "Other Jan", "JAN@example.be", "mayo")
	s.ErrorIs(err, model.ErrEmailExists)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	user, _ := s.service.Register(s.ctx, "Jan", "jan@example.be", "frietjes")

	session, err := s.service.Login(s.ctx, "jan@example.be", "frietjes")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(user.ID, session.User.ID)
	s.Equal(s.clock.Now().Add(time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginTokenResolvesToIdentity() {
	user, _ := s.service.Register(s.ctx, "Jan", "jan@example.be", "frietjes")
	session, _ := s.service.Login(s.ctx, "jan@example.be", "frietjes")

	identity, err := s.service.Verifier().Verify(session.Token)
	s.Require().NoError(err)
	s.Equal(user.Identity(), *identity)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, _ = s.service.Register(s.ctx, "Jan", "jan@example.be", "frietjes")

	_, err := s.service.Login(s.ctx, "jan@example.be", "mayo")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody@example.be", "frietjes")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginRequiresFields() {
	_, err := s.service.Login(s.ctx, "", "frietjes")
	s.ErrorIs(err, model.ErrMissingField)
}
