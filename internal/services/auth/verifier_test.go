package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/fritkotgp/raceapi/internal/dependencies/mocks"
	"github.com/fritkotgp/raceapi/internal/model"
)

type VerifierSuite struct {
	suite.Suite
	clock    *mocks.MockClock
	verifier *Verifier
	identity model.Identity
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.verifier = NewVerifier("test-secret", 168*time.Hour, s.clock)
	s.identity = model.Identity{ID: "u1", Username: "Jan", Email: "jan@example.be"}
}

func (s *VerifierSuite) issue() string {
	token, _, err := s.verifier.Issue(s.identity)
	s.Require().NoError(err)
	return token
}

func (s *VerifierSuite) TestVerifyHeaderResolvesIdentity() {
	identity, err := s.verifier.VerifyHeader("Bearer " + s.issue())
	s.Require().NoError(err)
	s.Equal(s.identity, *identity)
}

func (s *VerifierSuite) TestSchemeIsCaseInsensitive() {
	_, err := s.verifier.VerifyHeader("bearer " + s.issue())
	s.NoError(err)
}

func (s *VerifierSuite) TestMissingToken() {
	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc", s.issue()} {
		_, err := s.verifier.VerifyHeader(header)
		s.ErrorIs(err, ErrMissingToken, "header %q", header)
	}
}

func (s *VerifierSuite) TestGarbageTokenIsInvalid() {
	_, err := s.verifier.VerifyHeader("Bearer not.a.jwt")
	s.ErrorIs(err, ErrInvalidToken)
	s.NotErrorIs(err, ErrMissingToken)
}

func (s *VerifierSuite) TestWrongSecretIsInvalid() {
	other := NewVerifier("other-secret", time.Hour, s.clock)
	token, _, err := other.Issue(s.identity)
	s.Require().NoError(err)

	_, err = s.verifier.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *VerifierSuite) TestExpiry() {
	token := s.issue()

	s.clock.Advance(167 * time.Hour)
	_, err := s.verifier.Verify(token)
	s.NoError(err)

	s.clock.Advance(2 * time.Hour)
	_, err = s.verifier.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *VerifierSuite) TestRejectsOtherAlgorithms() {
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, err = s.verifier.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *VerifierSuite) TestRequiresUserID() {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, err = s.verifier.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *VerifierSuite) TestRequiresExpiry() {
	claims := Claims{UserID: "u1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, err = s.verifier.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}
