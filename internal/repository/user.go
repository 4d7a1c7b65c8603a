package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/MIDevJourney/invoice-analyzer/internal/common"
	"github.com/MIDevJourney/invoice-analyzer/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type userRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewUserRepository(db *sqlx.DB, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := r.db.Rebind(`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isConflict(err) {
			return common.ErrConflict
		}
		r.logger.Error("failed to create user", "email", user.Email, "error", err)
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	query := r.db.Rebind(`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`)
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get user by email", "error", err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	query := r.db.Rebind(`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get user by id", "error", err)
		return nil, err
	}
	return &user, nil
}
