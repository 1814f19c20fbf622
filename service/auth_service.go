package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/mailer"
	"github.com/sajag-gupta/riseup/repository"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenService
	mail   mailer.EmailService
	runner Runner
	// dummyHash is compared against on unknown emails so both failure paths
	// cost one bcrypt comparison.
	dummyHash []byte
}

func NewAuthService(users repository.UserRepository, tokens TokenService, mail mailer.EmailService, runner Runner) AuthService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("riseup-dummy-password"), bcrypt.DefaultCost)
	return &authService{users: users, tokens: tokens, mail: mail, runner: runner, dummyHash: dummy}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newUser(name, email, hash string, role domain.Role) *domain.User {
	now := time.Now()
	u := &domain.User{
		ID:            newID(),
		Name:          strings.TrimSpace(name),
		Email:         email,
		Password:      hash,
		Role:          role,
		Favorites:     []string{},
		Following:     []string{},
		Playlists:     []domain.Playlist{},
		Subscriptions: []string{},
		Plan:          domain.PlanFree,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if role == domain.RoleArtist {
		u.Artist = domain.NewArtistProfile()
	}
	return u
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		logger.Warn(logger.EventValidationFailure, "Signup with registered email", logger.Fields("email", email))
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleFan
	}
	if role != domain.RoleFan && role != domain.RoleArtist {
		return nil, invalid("role must be fan or artist")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := newUser(req.Name, email, string(hash), role)
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race against a concurrent signup on the unique index.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	logger.Info(logger.EventSignup, "User registered", logger.Fields(
		"user_id", user.ID,
		"email", user.Email,
		"role", string(user.Role),
	))

	s.runner.Go("welcome-email", func(context.Context) error {
		if err := s.mail.SendWelcome(user.Email, user.Name, user.Role); err != nil {
			logger.Error(logger.EventEmailFailure, "Welcome email failed", logger.Fields(
				"user_id", user.ID,
				"error", err.Error(),
			))
		}
		return nil
	})

	return &dto.AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		logger.Security(logger.EventLoginFailure, "Login failed", logger.Fields(
			"email", email,
			"reason", "unknown email",
		))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Security(logger.EventLoginFailure, "Login failed", logger.Fields(
			"email", email,
			"reason", "wrong password",
		))
		return nil, ErrInvalidCredentials
	}

	if user.Banned {
		logger.Security(logger.EventAccessDenied, "Banned user attempted login", logger.Fields("user_id", user.ID))
		return nil, forbidden("account is suspended")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	logger.Info(logger.EventLoginSuccess, "User logged in", logger.Fields(
		"user_id", user.ID,
		"role", string(user.Role),
	))
	return &dto.AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	return lookup(u, err, "user")
}
