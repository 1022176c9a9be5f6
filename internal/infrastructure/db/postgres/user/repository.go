package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"palmr-api/internal/domain/user"
	"palmr-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) user.Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchUserByID(ctx context.Context, uuid user.UUID) (*user.User, error) {
	u := new(User)
	err := r.db.QueryRow(ctx, SelectUserByID, uuid.String()).Scan(u.ScanDest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), nil
}

func (r *Repository) FetchUserByLogin(ctx context.Context, login string) (*user.User, error) {
	u := new(User)
	err := r.db.QueryRow(ctx, SelectUserByLogin, login).Scan(u.ScanDest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), nil
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, CountUsers).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	return CreateUser(ctx, r.db, req)
}

// CreateUser inserts req through q, which may be a pool or a transaction.
func CreateUser(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, req user.User) (*user.User, error) {
	u := new(User)

	err := q.QueryRow(
		ctx,
		InsertUser,
		req.Username, req.Email, req.PasswordHash, req.FirstName, req.LastName, req.IsAdmin, req.IsActive,
	).Scan(u.ScanDest()...)
	if err != nil {
		if sentinel := UniqueViolationError(postgres.UniqueConstraint(err)); sentinel != nil {
			return nil, sentinel
		}
		return nil, err
	}

	return fromDBModel(u), nil
}

func (r *Repository) UpdateAvatar(ctx context.Context, uuid user.UUID, image string) (*user.User, error) {
	u := new(User)

	err := r.db.QueryRow(ctx, UpdateUserImage, image, uuid.String()).Scan(u.ScanDest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), nil
}

func (r *Repository) FetchInternalID(ctx context.Context, uuid user.UUID) (user.ID, error) {
	var id uint64
	if err := r.db.QueryRow(ctx, SelectIdByUUID, uuid.String()).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user not found by uuid %s: %w", uuid.String(), err)
		}
		return 0, err
	}

	return user.ID(id), nil
}
