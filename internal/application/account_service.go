package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/internal/domain/repository"
	"github.com/davitren/storefront/pkg/apperr"
	"github.com/davitren/storefront/pkg/helpers"
	"github.com/davitren/storefront/pkg/mailer"
)

// resetTokenTTL is how long a password-reset token stays redeemable.
const resetTokenTTL = 10 * time.Minute

const sessionTTL = 24 * time.Hour

// AccountService covers signup, login/logout with redis-backed sessions,
// and the password-reset token lifecycle.
type AccountService struct {
	Repo        repository.UserRepository
	JWT         *helpers.JWTManager
	Redis       *redis.Client
	Logger      *logrus.Logger
	Pub         *helpers.RabbitPublisher
	ResetURL    string
	MailEnabled bool
}

func NewAccountService(repo repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, resetURL string, mailEnabled bool) *AccountService {
	return &AccountService{
		Repo:        repo,
		JWT:         jwt,
		Redis:       rdb,
		Logger:      logger,
		Pub:         pub,
		ResetURL:    resetURL,
		MailEnabled: mailEnabled,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type LoginResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Signup creates an account with an empty cart. The welcome email is
// enqueued best-effort after the account is durably stored; a publish
// failure is logged and never rolls the account back.
func (s *AccountService) Signup(ctx context.Context, email, password, name string) (*entity.User, error) {
	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Validation("email already registered", map[string]string{"email": "already registered, please use a different one"})
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u := &entity.User{Email: email, PasswordHash: hash, Name: name}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, apperr.Internal(err)
	}

	if s.Pub != nil && s.MailEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateWelcome,
			Data:     map[string]any{"Name": u.Name, "Email": u.Email},
		}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Warn("welcome email enqueue failed")
		}
	}
	return u, nil
}

// Authenticate validates email/password without issuing tokens.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *AccountService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, apperr.Internal(err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, apperr.Internal(err)
	}

	if s.Redis != nil {
		key := helpers.SessionKey(u.ID)
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return &LoginResponse{UserID: u.ID, Email: u.Email, Name: u.Name}, pair, nil
}

func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", apperr.Unauthorized("invalid refresh token")
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", apperr.Unauthorized("invalid refresh token")
	}
	// The token's sid must match the live session.
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, helpers.SessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", apperr.Unauthorized("invalid refresh token")
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, u.ID, nil
}

// Logout destroys the redis session and any anti-forgery token bound to it.
func (s *AccountService) Logout(ctx context.Context, userID string) error {
	if s.Redis == nil || userID == "" {
		return nil
	}
	return s.Redis.Del(ctx, helpers.SessionKey(userID), helpers.CSRFKey(userID)).Err()
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

// ResetInit issues a password-reset token: 32 random bytes, stored on the
// account together with a 10-minute expiry, then mailed as a link. Unknown
// emails return success without side effects so addresses cannot be probed.
func (s *AccountService) ResetInit(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		if s.Logger != nil {
			s.Logger.WithField("email", email).Info("password reset requested for unknown email")
		}
		return nil
	}

	token, err := helpers.GenerateToken(32)
	if err != nil {
		return apperr.Internal(err)
	}
	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.Repo.SetResetToken(ctx, u.ID, token, expiresAt); err != nil {
		return apperr.Internal(err)
	}

	link := s.ResetURL + "?token=" + token
	if s.Pub != nil && s.MailEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateResetPassword,
			Data: map[string]any{
				"Name":      u.Name,
				"ResetURL":  link,
				"ExpiresIn": resetTokenTTL.String(),
			},
		}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Warn("reset email enqueue failed")
		}
	}
	return nil
}

// ResetConfirm redeems a token: it must match a stored token whose expiry
// is still in the future. The new hash is written and both token fields are
// cleared in the same statement.
func (s *AccountService) ResetConfirm(ctx context.Context, token, newPassword string) error {
	u, err := s.Repo.GetByResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("invalid or expired token")
		}
		return apperr.Internal(err)
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.Repo.RedeemResetToken(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("invalid or expired token")
		}
		return apperr.Internal(err)
	}
	return nil
}
