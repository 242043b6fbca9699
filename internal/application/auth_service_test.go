package application

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/mailmerge/internal/domain/entity"
	repo "github.com/oksasatya/mailmerge/internal/domain/repository"
	"github.com/oksasatya/mailmerge/pkg/helpers"
)

// MockOperatorRepository is a mock implementation of the OperatorRepository interface.
type MockOperatorRepository struct {
	mock.Mock
}

func (m *MockOperatorRepository) Create(ctx context.Context, o *entity.Operator) error {
	args := m.Called(ctx, o)
	if args.Error(0) == nil {
		o.ID = "op-new"
	}
	return args.Error(0)
}

func (m *MockOperatorRepository) GetByID(ctx context.Context, id string) (*entity.Operator, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*entity.Operator)
	return o, args.Error(1)
}

func (m *MockOperatorRepository) GetByEmail(ctx context.Context, email string) (*entity.Operator, error) {
	args := m.Called(ctx, email)
	o, _ := args.Get(0).(*entity.Operator)
	return o, args.Error(1)
}

func newAuth(r *MockOperatorRepository) *AuthService {
	jwt := &helpers.JWTManager{AccessSecret: []byte("access-secret"), RefreshSecret: []byte("refresh-secret"), AccessTTL: time.Minute, RefreshTTL: time.Hour}
	return NewAuthService(r, jwt, nil, quietLogger())
}

func operator(t *testing.T, password string) *entity.Operator {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	return &entity.Operator{ID: "op-1", Email: "ops@acme.test", Password: hash, Name: "Ops"}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	r := &MockOperatorRepository{}
	r.On("GetByEmail", mock.Anything, "ops@acme.test").Return(operator(t, "correct-horse"), nil)
	svc := newAuth(r)

	res, pair, err := svc.Login(context.Background(), "ops@acme.test", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "op-1", res.OperatorID)
	assert.Equal(t, "Ops", res.Name)

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.OperatorID)

	refresh, err := svc.JWT.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, refresh.SessionID)
}

func TestAuthService_Login_Rejects(t *testing.T) {
	t.Parallel()

	r := &MockOperatorRepository{}
	r.On("GetByEmail", mock.Anything, "ops@acme.test").Return(operator(t, "correct-horse"), nil)
	r.On("GetByEmail", mock.Anything, "nobody@acme.test").Return(nil, repo.ErrNotFound)
	svc := newAuth(r)

	_, _, err := svc.Login(context.Background(), "ops@acme.test", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "nobody@acme.test", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	t.Parallel()

	r := &MockOperatorRepository{}
	op := operator(t, "correct-horse")
	r.On("GetByEmail", mock.Anything, op.Email).Return(op, nil)
	r.On("GetByID", mock.Anything, op.ID).Return(op, nil)
	svc := newAuth(r)

	_, pair, err := svc.Login(context.Background(), op.Email, "correct-horse")
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "access tokens are signed with another secret")
}

func TestAuthService_Seed(t *testing.T) {
	t.Parallel()

	t.Run("creates missing operator", func(t *testing.T) {
		r := &MockOperatorRepository{}
		r.On("GetByEmail", mock.Anything, "ops@acme.test").Return(nil, repo.ErrNotFound)
		r.On("Create", mock.Anything, mock.AnythingOfType("*entity.Operator")).Return(nil).Once()

		o, created, err := newAuth(r).Seed(context.Background(), "ops@acme.test", "correct-horse", "Ops")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "op-new", o.ID)
		assert.NotEqual(t, "correct-horse", o.Password)
		assert.True(t, helpers.CompareHashAndPassword(o.Password, "correct-horse"))
		r.AssertExpectations(t)
	})

	t.Run("keeps existing operator", func(t *testing.T) {
		r := &MockOperatorRepository{}
		r.On("GetByEmail", mock.Anything, "ops@acme.test").Return(operator(t, "x"), nil)

		o, created, err := newAuth(r).Seed(context.Background(), "ops@acme.test", "correct-horse", "Ops")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "op-1", o.ID)
		r.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("surfaces lookup errors", func(t *testing.T) {
		r := &MockOperatorRepository{}
		r.On("GetByEmail", mock.Anything, "ops@acme.test").Return(nil, errors.New("connection refused"))

		_, _, err := newAuth(r).Seed(context.Background(), "ops@acme.test", "correct-horse", "Ops")
		assert.EqualError(t, err, "connection refused")
	})
}

// unreachableRedis returns a client for a port nothing listens on.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	c := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestAuthService_SaveSessionLogsRedisFailure(t *testing.T) {
	t.Parallel()

	logger, hook := logtest.NewNullLogger()
	svc := newAuth(&MockOperatorRepository{})
	svc.Redis = unreachableRedis(t)
	svc.Logger = logger

	svc.saveSession(context.Background(), SessionKey("op-1"), map[string]any{"sid": "s-1"})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "redis pipeline failed", entry.Message)
	assert.Equal(t, SessionKey("op-1"), entry.Data["key"])
	assert.NotNil(t, entry.Data[logrus.ErrorKey])
}

func TestAuthService_Login_SucceedsWhenSessionWriteFails(t *testing.T) {
	t.Parallel()

	r := &MockOperatorRepository{}
	r.On("GetByEmail", mock.Anything, "ops@acme.test").Return(operator(t, "correct-horse"), nil)
	logger, hook := logtest.NewNullLogger()
	svc := newAuth(r)
	svc.Redis = unreachableRedis(t)
	svc.Logger = logger

	res, pair, err := svc.Login(context.Background(), "ops@acme.test", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "op-1", res.OperatorID)
	assert.NotEmpty(t, pair.AccessToken)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "redis pipeline failed", hook.LastEntry().Message)
}
