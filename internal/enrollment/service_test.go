package enrollment

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/suite"

	keyStore "biokey/internal/enrollment/store/keys"
	"biokey/internal/validation"
	codeStore "biokey/internal/validation/store/codes"
	id "biokey/pkg/domain"
	dErrors "biokey/pkg/domain-errors"
)

const account = id.AccountID("user@example.com")

type EnrollmentServiceSuite struct {
	suite.Suite
	keys    *keyStore.InMemoryKeyStore
	codes   *validation.Service
	service *Service
	ctx     context.Context
}

func TestEnrollmentServiceSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentServiceSuite))
}

func (s *EnrollmentServiceSuite) SetupTest() {
	s.keys = keyStore.NewInMemoryKeyStore()
	s.ctx = context.Background()

	var err error
	s.codes, err = validation.New(codeStore.NewInMemoryCodeStore())
	s.Require().NoError(err)

	s.service, err = New(s.keys, s.codes)
	s.Require().NoError(err)
}

func (s *EnrollmentServiceSuite) newKey() ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	return pub
}

func (s *EnrollmentServiceSuite) TestNew() {
	_, err := New(nil, s.codes)
	s.Error(err)

	_, err = New(s.keys, nil)
	s.Error(err)
}

func (s *EnrollmentServiceSuite) TestRegisterBootstrap() {
	s.Run("missing key is rejected", func() {
		err := s.service.Register(s.ctx, account, nil, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeMissingInput))
	})

	s.Run("wrong key length is rejected", func() {
		err := s.service.Register(s.ctx, account, []byte{1, 2, 3}, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeMissingInput))
	})

	s.Run("first key registers without a code", func() {
		err := s.service.Register(s.ctx, account, s.newKey(), 0)
		s.NoError(err)
	})

	s.Run("a supplied code is ignored for the first key", func() {
		other := id.AccountID("fresh@example.com")
		err := s.service.Register(s.ctx, other, s.newKey(), 424242)
		s.NoError(err)
	})
}

func (s *EnrollmentServiceSuite) TestRegisterGatedGrowth() {
	s.Require().NoError(s.service.Register(s.ctx, account, s.newKey(), 0))

	s.Run("second key without a code is rejected", func() {
		err := s.service.Register(s.ctx, account, s.newKey(), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("second key with a wrong code is rejected", func() {
		code, err := s.codes.Issue(s.ctx, account)
		s.Require().NoError(err)

		wrong := code + 1
		if wrong > 999999 {
			wrong = 100000
		}
		err = s.service.Register(s.ctx, account, s.newKey(), wrong)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("second key with the freshest code registers and consumes it", func() {
		code, err := s.codes.Issue(s.ctx, account)
		s.Require().NoError(err)

		s.NoError(s.service.Register(s.ctx, account, s.newKey(), code))

		// The code was consumed with the registration.
		ok, err := s.codes.ConsumeIfMatches(s.ctx, account, code)
		s.NoError(err)
		s.False(ok)

		keys, err := s.service.KeysFor(s.ctx, account)
		s.NoError(err)
		s.Len(keys, 2)
	})
}

func (s *EnrollmentServiceSuite) TestRegisterDuplicateKey() {
	key := s.newKey()
	s.Require().NoError(s.service.Register(s.ctx, account, key, 0))

	code, err := s.codes.Issue(s.ctx, account)
	s.Require().NoError(err)

	err = s.service.Register(s.ctx, account, key, code)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	// Duplicate rejection happens before the code gate, so the code survives.
	ok, err := s.codes.ConsumeIfMatches(s.ctx, account, code)
	s.NoError(err)
	s.True(ok)
}

func (s *EnrollmentServiceSuite) TestKeysFor() {
	keys, err := s.service.KeysFor(s.ctx, account)
	s.NoError(err)
	s.Empty(keys)

	first := s.newKey()
	s.Require().NoError(s.service.Register(s.ctx, account, first, 0))

	keys, err = s.service.KeysFor(s.ctx, account)
	s.NoError(err)
	s.Require().Len(keys, 1)
	s.Equal(first, keys[0])
}
