package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/scoreboard/internal/dependencies/mocks"
	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/services/password"
	"github.com/mcoot/scoreboard/internal/services/token"
	"github.com/mcoot/scoreboard/internal/storage/memory"
	"github.com/mcoot/scoreboard/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	ids     *mocks.MockIDGenerator
	tokens  *token.Manager
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockIDGenerator()

	var err error
	s.tokens, err = token.New(token.Config{Secret: "test-secret", TTL: time.Hour}, s.clock)
	s.Require().NoError(err)

	// Minimum cost keeps the suite fast
	hasher := password.New(bcrypt.MinCost)
	s.service = New(s.storage, hasher, s.tokens, s.ids, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	s.ids.Queue("user-1")

	session, err := s.service.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(model.UserID("user-1"), session.User.ID)
	s.Equal("alice", session.User.Username)
	s.Equal("a@x.com", session.User.Email)
	s.Equal(s.clock.Now(), session.User.CreatedAt)
}

func (s *ServiceSuite) TestRegisterTokenIdentifiesUser() {
	session, err := s.service.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	identity, err := s.tokens.Verify(session.Token)
	s.Require().NoError(err)
	s.Equal(session.User.ID, identity.SubjectID)
	s.Equal("alice", identity.Username)
}

func (s *ServiceSuite) TestRegisterStoresHashNotPassword() {
	_, err := s.service.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	user, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEqual("secret1", user.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	_, err := s.service.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other@x.com", "secret2")
	s.ErrorIs(err, model.ErrDuplicateIdentity)
}

func (s *ServiceSuite) TestRegisterDuplicateEmail() {
	_, err := s.service.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "bob", "a@x.com", "secret2")
	s.ErrorIs(err, model.ErrDuplicateIdentity)
}

func (s *ServiceSuite) TestRegisterMissingFields() {
	cases := []struct{ username, email, password string }{
		{"", "a@x.com", "secret1"},
		{"alice", "", "secret1"},
		{"alice", "a@x.com", ""},
		{"   ", "a@x.com", "secret1"},
	}

	for _, c := range cases {
		_, err := s.service.Register(s.ctx, c.username, c.email, c.password)
		s.ErrorIs(err, model.ErrValidation)
	}
}

func (s *ServiceSuite) TestRegisterShortPassword() {
	_, err := s.service.Register(s.ctx, "alice", "a@x.com", "12345")
	s.Require().ErrorIs(err, model.ErrValidation)

	var ve *model.ValidationError
	s.Require().True(errors.As(err, &ve))
	s.Contains(ve.Message, "at least 6 characters")

	// Length counts characters, not bytes
	_, err = s.service.Register(s.ctx, "alice", "a@x.com", "ééé")
	s.ErrorIs(err, model.ErrValidation)

	_, err = s.storage.GetUserByUsername(s.ctx, "alice")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestRegisterSixCharacterPasswordAccepted() {
	_, err := s.service.Register(s.ctx, "alice", "a@x.com", "123456")
	s.NoError(err)

	_, err = s.service.Register(s.ctx, "bob", "b@x.com", "éééééé")
	s.NoError(err)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	registered, err := s.service.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	session, err := s.service.Login(s.ctx, "alice", "secret1")
	s.Require().NoError(err)
	s.Equal(registered.User.ID, session.User.ID)

	identity, err := s.tokens.Verify(session.Token)
	s.Require().NoError(err)
	s.Equal(registered.User.ID, identity.SubjectID)
}

func (s *ServiceSuite) TestLoginWrongPasswordAndUnknownUserAreIndistinguishable() {
	_, err := s.service.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	_, wrongPassword := s.service.Login(s.ctx, "alice", "wrong-password")
	_, unknownUser := s.service.Login(s.ctx, "mallory", "secret1")

	s.ErrorIs(wrongPassword, ErrInvalidCredentials)
	s.ErrorIs(unknownUser, ErrInvalidCredentials)
	s.Equal(wrongPassword.Error(), unknownUser.Error())
}

func (s *ServiceSuite) TestLoginIsCaseSensitive() {
	_, err := s.service.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "Alice", "secret1")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginMissingFields() {
	_, err := s.service.Login(s.ctx, "", "secret1")
	s.ErrorIs(err, model.ErrValidation)

	_, err = s.service.Login(s.ctx, "alice", "")
	s.ErrorIs(err, model.ErrValidation)
}

// Me tests

func (s *ServiceSuite) TestMeReturnsUser() {
	session, err := s.service.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	user, err := s.service.Me(s.ctx, model.Identity{SubjectID: session.User.ID, Username: "alice"})
	s.Require().NoError(err)
	s.Equal("a@x.com", user.Email)
}

func (s *ServiceSuite) TestMeUnknownUser() {
	_, err := s.service.Me(s.ctx, model.Identity{SubjectID: "ghost"})
	s.ErrorIs(err, model.ErrUserNotFound)
}
