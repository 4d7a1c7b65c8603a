package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MIDevJourney/invoice-analyzer/internal/common"
	"github.com/MIDevJourney/invoice-analyzer/internal/entity"
	"github.com/MIDevJourney/invoice-analyzer/internal/pkg/jwt"
	"github.com/MIDevJourney/invoice-analyzer/internal/pkg/password"
	"github.com/MIDevJourney/invoice-analyzer/internal/repository"
)

type AuthService struct {
	logger    *slog.Logger
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(logger *slog.Logger, users repository.UserRepository, cfg common.AuthConfig) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		logger:    logger,
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, email, plainPassword string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return nil, "", common.InvalidArgumentError("email and password are required")
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	user := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := jwt.GenerateToken(user.ID.String(), user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("auth.register.ok", "user_id", user.ID)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", common.UnauthorizedError("incorrect email or password")
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", common.UnauthorizedError("incorrect email or password")
	}
	token, err := jwt.GenerateToken(user.ID.String(), user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("auth.login.ok", "user_id", user.ID)
	return user, token, nil
}
