package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/mykafka"
	"github.com/Skotchmaster/product_catalog/internal/transport"
	"github.com/Skotchmaster/product_catalog/internal/validation"
	"github.com/Skotchmaster/product_catalog/pkg/hash"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
	"github.com/Skotchmaster/product_catalog/pkg/tokens"
)

const DefaultTokenTTL = 24 * time.Hour

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

type AuthService struct {
	Repo       UserStore
	Validator  *validation.Validator
	Events     mykafka.Publisher
	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int
	Now        func() time.Time
}

type AuthResult struct {
	User      models.PublicUser
	Token     string
	ExpiresAt time.Time
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// equalizeTiming burns one bcrypt comparison so a miss on the email costs
// the same as a wrong password.
func equalizeTiming(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = hash.HashPassword("timing-equalizer", hash.DefaultCost)
	})
	hash.CheckPassword(dummyHash, password)
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) ttl() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return DefaultTokenTTL
}

func (s *AuthService) validate(v any) error {
	if s.Validator != nil {
		return s.Validator.Validate(v)
	}
	return defaultValidator.Validate(v)
}

func (s *AuthService) Register(ctx context.Context, req *transport.RegisterRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := s.validate(req); err != nil {
		return nil, err
	}

	u, err := s.createUser(ctx, req.Username, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	l.Info("user_registered", "user_id", u.ID)

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, u.ID, map[string]any{
		"type":     "user_registered",
		"userID":   u.ID,
		"username": u.Username,
	})
	return res, nil
}

// Login never reveals whether the email exists.
func (s *AuthService) Login(ctx context.Context, req *transport.LoginRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if err := s.validate(req); err != nil {
		return nil, err
	}

	u, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			equalizeTiming(req.Password)
			l.Warn("login_failed", "reason", "unknown email")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !hash.CheckPassword(u.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", u.ID)
		return nil, domain.ErrInvalidCredentials
	}

	at := s.now()
	if err := s.Repo.TouchLastLogin(ctx, u.ID, at); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	u.LastLogin = &at
	l.Info("user_logged_in", "user_id", u.ID)

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, u.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": u.ID,
	})
	return res, nil
}

func (s *AuthService) Profile(ctx context.Context, id uint) (*models.PublicUser, error) {
	return s.GetUser(ctx, id)
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.PublicUser, error) {
	u, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	pub := u.Public()
	return &pub, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// EnsureAdmin creates an admin account unless the email is already taken.
// The second return value reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.PublicUser, bool, error) {
	req := &transport.RegisterRequest{Username: username, Email: email, Password: password}
	if err := s.validate(req); err != nil {
		return nil, false, err
	}

	existing, err := s.Repo.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		pub := existing.Public()
		return &pub, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, fmt.Errorf("ensure admin: %w", err)
	}

	u, err := s.createUser(ctx, req.Username, req.Email, req.Password, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	pub := u.Public()
	return &pub, true, nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password, role string) (*models.User, error) {
	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// lost a race with a concurrent registration
			if cerr := s.checkAvailable(ctx, username, email); cerr != nil {
				return nil, cerr
			}
			return nil, domain.NewConflict("user already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *AuthService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return domain.NewConflict("email already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.Repo.GetUserByUsername(ctx, username); err == nil {
		return domain.NewConflict("username already taken")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup username: %w", err)
	}
	return nil
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, exp, err := tokens.IssueAt(s.JWTSecret, tokens.Identity{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
	}, s.ttl(), s.now())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: u.Public(), Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) publish(ctx context.Context, userID uint, event map[string]any) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.Events.PublishEvent(ctx, mykafka.TopicUsers, strconv.FormatUint(uint64(userID), 10), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", mykafka.TopicUsers, "error", err)
	}
}
