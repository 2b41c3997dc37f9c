package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/cryptox"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func annInput() RegisterInput {
	return RegisterInput{Name: "Ann", Email: "ann@x.io", Password: "secret1"}
}

func messages(t *testing.T, err error) []string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want *ValidationError, got %v", err)
	out := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		out[i] = fe.Msg
	}
	return out
}

func TestRegister_Success(t *testing.T) {
	users := newMemUsers()
	s, mock := newMockedService(t, users)
	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := s.Register(context.Background(), RegisterInput{Name: "  Ann ", Email: " Ann@X.io ", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, Registered, res.Outcome)
	require.NotNil(t, res.User)
	assert.Equal(t, "Ann", res.User.Name)
	assert.Equal(t, "ann@x.io", res.User.Email)
	assert.Equal(t, models.DefaultAvatar, res.User.Avatar)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)
	assert.True(t, cryptox.CheckPassword(res.User.PasswordHash, []byte("secret1")))

	id, err := newTestIssuer().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateOnPrecheck(t *testing.T) {
	users := newMemUsers()
	s, mock := newMockedService(t, users)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Register(context.Background(), annInput())
	require.NoError(t, err)

	in := annInput()
	in.Email = "ANN@x.io"
	res, err := s.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, DuplicateOnPrecheck, res.Outcome)
	assert.Empty(t, res.Token)
	assert.Equal(t, []string{MsgUserExists}, messages(t, err))
	assert.Equal(t, 1, users.count())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateOnWrite(t *testing.T) {
	users := newMemUsers()
	s, mock := newMockedService(t, users)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Register(context.Background(), annInput())
	require.NoError(t, err)

	users.skipPrecheck = true
	res, err := s.Register(context.Background(), annInput())
	require.Error(t, err)
	assert.Equal(t, DuplicateOnWrite, res.Outcome)
	assert.Equal(t, []string{MsgUserExists}, messages(t, err))
	assert.Equal(t, 1, users.count())
}

func TestRegister_BothDuplicatePathsLookTheSame(t *testing.T) {
	users := newMemUsers()
	s := newTestService(t, users)

	_, err := s.Register(context.Background(), annInput())
	require.NoError(t, err)

	_, errPre := s.Register(context.Background(), annInput())
	users.skipPrecheck = true
	_, errWrite := s.Register(context.Background(), annInput())

	assert.Equal(t, errPre.Error(), errWrite.Error())
	assert.Equal(t, messages(t, errPre), messages(t, errWrite))
}

func TestRegister_StorageFailureIsNotValidation(t *testing.T) {
	users := newMemUsers()
	users.failWith = errors.New("db error: connection refused")
	s := newTestService(t, users)

	_, err := s.Register(context.Background(), annInput())
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorValidation))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRegister_TokenFailure(t *testing.T) {
	users := newMemUsers()
	s := NewUserService(newTxDB(t), &fakeRepoManager{users: users}, failingIssuer{}, bcrypt.MinCost)

	_, err := s.Register(context.Background(), annInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue token")
}

func TestLogin_Success(t *testing.T) {
	users := newMemUsers()
	s := newTestService(t, users)

	reg, err := s.Register(context.Background(), annInput())
	require.NoError(t, err)

	token, err := s.Login(context.Background(), "ANN@x.io", "secret1")
	require.NoError(t, err)

	id, err := newTestIssuer().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id)
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	users := newMemUsers()
	s := newTestService(t, users)

	_, err := s.Register(context.Background(), annInput())
	require.NoError(t, err)

	_, errWrong := s.Login(context.Background(), "ann@x.io", "wrongpass")
	_, errUnknown := s.Login(context.Background(), "nobody@x.io", "secret1")

	require.Error(t, errWrong)
	require.Error(t, errUnknown)
	assert.True(t, errors.Is(errWrong, common.ErrInvalidCredentials))
	assert.True(t, errors.Is(errUnknown, common.ErrInvalidCredentials))
	assert.Equal(t, errWrong, errUnknown)
}

func TestLogin_MissCostsAsMuchAsWrongPasswordAtConfiguredCost(t *testing.T) {
	if testing.Short() {
		t.Skip("bcrypt at a production cost is slow")
	}
	const cost = bcrypt.DefaultCost + 2
	s := NewUserService(newTxDB(t), &fakeRepoManager{users: newMemUsers()}, newTestIssuer(), cost)

	_, err := s.Register(context.Background(), annInput())
	require.NoError(t, err)

	fastest := func(email string) time.Duration {
		best := time.Duration(1<<63 - 1)
		for i := 0; i < 3; i++ {
			start := time.Now()
			_, err := s.Login(context.Background(), email, "wrongpass")
			elapsed := time.Since(start)
			require.ErrorIs(t, err, common.ErrInvalidCredentials)
			best = min(best, elapsed)
		}
		return best
	}

	wrong := fastest("ann@x.io")
	unknown := fastest("nobody@x.io")

	ratio := float64(unknown) / float64(wrong)
	assert.Greater(t, ratio, 0.5, "unknown email %v vs wrong password %v", unknown, wrong)
	assert.Less(t, ratio, 2.0, "unknown email %v vs wrong password %v", unknown, wrong)
}

func TestLogin_StorageFailure(t *testing.T) {
	users := newMemUsers()
	users.failWith = errors.New("db error: timeout")
	s := newTestService(t, users)

	_, err := s.Login(context.Background(), "ann@x.io", "secret1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrInvalidCredentials))
}

func TestMe(t *testing.T) {
	users := newMemUsers()
	s := newTestService(t, users)

	reg, err := s.Register(context.Background(), annInput())
	require.NoError(t, err)

	me, err := s.Me(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublicUser{
		ID:        reg.User.ID,
		Name:      "Ann",
		Email:     "ann@x.io",
		Avatar:    models.DefaultAvatar,
		CreatedAt: reg.User.CreatedAt,
	}, me)
}

func TestMe_NotFound(t *testing.T) {
	s := newTestService(t, newMemUsers())

	_, err := s.Me(context.Background(), "u-404")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMe_StorageFailure(t *testing.T) {
	users := newMemUsers()
	users.failWith = errors.New("db error: gone")
	s := newTestService(t, users)

	_, err := s.Me(context.Background(), "u-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorNotFound))
}

func TestMe_AvatarURL(t *testing.T) {
	users := newMemUsers()
	s := newTestService(t, users, WithAvatarSigner(&fakeSigner{url: "https://cdn/"}))

	reg, err := s.Register(context.Background(), annInput())
	require.NoError(t, err)

	me, err := s.Me(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/my-avatar.jpg", me.AvatarURL)
}

func TestMe_AvatarSignerFailureIsNotFatal(t *testing.T) {
	users := newMemUsers()
	s := newTestService(t, users, WithAvatarSigner(&fakeSigner{err: errors.New("s3 down")}))

	reg, err := s.Register(context.Background(), annInput())
	require.NoError(t, err)

	me, err := s.Me(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Empty(t, me.AvatarURL)
	assert.Equal(t, "Ann", me.Name)
}

func TestRegisterOutcome_String(t *testing.T) {
	assert.Equal(t, "registered", Registered.String())
	assert.Equal(t, "duplicate_on_precheck", DuplicateOnPrecheck.String())
	assert.Equal(t, "duplicate_on_write", DuplicateOnWrite.String())
	assert.Equal(t, "unknown", RegisterOutcome(0).String())
}
