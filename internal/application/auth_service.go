package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mailmerge/internal/domain/entity"
	repo "github.com/oksasatya/mailmerge/internal/domain/repository"
	"github.com/oksasatya/mailmerge/pkg/helpers"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const sessionTTL = 24 * time.Hour

// AuthService logs operators in and keeps their session hash in Redis.
type AuthService struct {
	Repo   repo.OperatorRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type LoginResponse struct {
	OperatorID string `json:"operator_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

// SessionKey is the Redis hash holding an operator's current session.
func SessionKey(operatorID string) string {
	return "operator:session:" + operatorID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewAuthService(repo repo.OperatorRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthService {
	return &AuthService{Repo: repo, JWT: jwt, Redis: rdb, Logger: logger}
}

// Authenticate validates email/password and returns the operator without issuing tokens.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.Operator, error) {
	o, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || o == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(o.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return o, nil
}

func (s *AuthService) issue(operatorID string) (TokenPair, string, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(operatorID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(operatorID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, sid, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	o, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, sid, err := s.issue(o.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("operator_id", o.ID).Error("generate tokens failed")
		}
		return nil, TokenPair{}, err
	}
	if s.Redis != nil {
		fields := map[string]any{
			"operator_id": o.ID,
			"email":       o.Email,
			"name":        o.Name,
			"sid":         sid,
			"created_at":  nowRFC3339(),
		}
		s.saveSession(ctx, SessionKey(o.ID), fields)
	}
	return &LoginResponse{OperatorID: o.ID, Email: o.Email, Name: o.Name}, pair, nil
}

// Refresh rotates both tokens when the refresh token belongs to the live session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	o, err := s.Repo.GetByID(ctx, claims.OperatorID)
	if err != nil || o == nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	key := SessionKey(o.ID)
	if s.Redis != nil {
		sid, rErr := s.Redis.HGet(ctx, key, "sid").Result()
		if rErr != nil || sid != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	pair, sid, err := s.issue(o.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if s.Redis != nil {
		s.saveSession(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
	}
	return pair, nil
}

// saveSession writes the session hash and renews its TTL. A failed write is
// logged; the caller still returns the issued tokens.
func (s *AuthService) saveSession(ctx context.Context, key string, fields map[string]any) {
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("redis pipeline failed")
	}
}

// Logout drops the operator's session so outstanding tokens stop working.
func (s *AuthService) Logout(ctx context.Context, operatorID string) error {
	if s.Redis == nil || operatorID == "" {
		return nil
	}
	return helpers.RedisDel(ctx, s.Redis, SessionKey(operatorID))
}

// Seed creates the operator if the email is not registered yet.
func (s *AuthService) Seed(ctx context.Context, email, password, name string) (*entity.Operator, bool, error) {
	if o, err := s.Repo.GetByEmail(ctx, email); err == nil && o != nil {
		return o, false, nil
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	o := &entity.Operator{Email: email, Password: hash, Name: name}
	if err := s.Repo.Create(ctx, o); err != nil {
		return nil, false, err
	}
	return o, true, nil
}
