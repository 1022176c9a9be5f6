package invite

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"palmr-api/internal/domain/invite"
	domainUser "palmr-api/internal/domain/user"
	"palmr-api/internal/infrastructure/db/postgres"
	userDB "palmr-api/internal/infrastructure/db/postgres/user"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) invite.Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateToken(
	ctx context.Context,
	token string,
	createdBy domainUser.UUID,
	expiresAt time.Time,
) (*invite.Token, error) {
	t := new(Token)
	if err := r.db.QueryRow(ctx, InsertInviteToken, token, createdBy, expiresAt).Scan(t.scanDest()...); err != nil {
		return nil, err
	}

	return fromDBModel(t), nil
}

func (r *Repository) FetchToken(ctx context.Context, token string) (*invite.Token, error) {
	t := new(Token)
	if err := r.db.QueryRow(ctx, SelectInviteToken, token).Scan(t.scanDest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(t), nil
}

func (r *Repository) ConsumeToken(
	ctx context.Context,
	token string,
	u domainUser.User,
	now time.Time,
) (*domainUser.User, error) {
	var created *domainUser.User

	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		t := new(Token)
		if err := tx.QueryRow(ctx, SelectInviteTokenForUpdate, token).Scan(t.scanDest()...); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return invite.ErrNotFound
			}
			return err
		}
		if t.UsedAt != nil {
			return invite.ErrAlreadyUsed
		}
		if !now.Before(t.ExpiresAt) {
			return invite.ErrExpired
		}

		var err error
		created, err = userDB.CreateUser(ctx, tx, u)
		switch {
		case errors.Is(err, userDB.ErrUsernameAlreadyExists):
			return invite.ErrUsernameTaken
		case errors.Is(err, userDB.ErrEmailAlreadyExists):
			return invite.ErrEmailTaken
		case err != nil:
			return err
		}

		tag, err := tx.Exec(ctx, MarkInviteTokenUsed, t.ID, now)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return invite.ErrAlreadyUsed
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
