package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/feed_shop/internal/events"
	"github.com/Skotchmaster/feed_shop/internal/models"
	"github.com/Skotchmaster/feed_shop/internal/repo"
	"github.com/Skotchmaster/feed_shop/internal/session"
	"github.com/Skotchmaster/feed_shop/internal/transport"
	pkg_hash "github.com/Skotchmaster/feed_shop/pkg/hash"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

type AuthService struct {
	Repo     *repo.GormRepo
	Sessions *session.Manager
	Events   events.Publisher
}

type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AdminBootstrap struct {
	Username string
	Password string
	Email    string
	Phone    string
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*LoginResult, error) {
	token, sess, err := s.Sessions.Issue(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, invalid("username", "Username is required")
	}

	if len(req.Password) > pkg_hash.MaxPasswordBytes {
		l.Warn("register_error", "status", 400, "reason", "password too long", "bytes", len(req.Password))
		return nil, invalid("password", "Password must be at most 72 bytes")
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 400, "reason", "user already exist", "username", username)
			return nil, invalid("username", "Username already exists")
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUser, strconv.FormatUint(uint64(user.ID), 10), "user_registered", map[string]any{
		"userID":   user.ID,
		"username": user.Username,
	})

	return s.startSession(ctx, user)
}

// Login fails with ErrInvalidCredentials for unknown users and wrong passwords alike.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pkg_hash.BurnCompare(password)
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	sess, err := s.Sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrInvalidToken) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	user, err := s.Repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Sessions.Revoke(ctx, token)
}

// RequireRole resolves the caller and checks the role. Anonymous callers get
// ErrForbidden as well.
func (s *AuthService) RequireRole(ctx context.Context, token, role string) (*models.User, error) {
	user, err := s.CurrentUser(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if user.Role != role {
		return nil, ErrForbidden
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, b AdminBootstrap) error {
	l := logging.FromContext(ctx).With("svc", "auth.ensure_admin")

	if b.Username == "" || b.Password == "" {
		l.Warn("admin_bootstrap_skipped", "reason", "ADMIN_USERNAME or ADMIN_PASSWORD not set")
		return nil
	}

	pwHash, err := pkg_hash.HashPassword(b.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		Username:     b.Username,
		PasswordHash: pwHash,
		Role:         models.RoleAdmin,
		FullName:     optional("Administrator"),
		Email:        optional(b.Email),
		Phone:        optional(b.Phone),
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, admin); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	l.Info("admin_created", "username", admin.Username)
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
