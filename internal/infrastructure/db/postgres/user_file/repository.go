package user_file

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"palmr-api/internal/domain/user"
	"palmr-api/internal/domain/user_file"
	"palmr-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) user_file.Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchUserFiles(ctx context.Context, userID user.ID, page int) (user_file.UserFiles, error) {
	rows, err := r.db.Query(ctx, SelectUserFiles, uint64(userID), page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ufs := UserFiles{}
	for rows.Next() {
		uf := new(UserFile)
		if err = rows.Scan(uf.scanDest()...); err != nil {
			return nil, err
		}
		ufs = append(ufs, uf)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&ufs), nil
}

func (r *Repository) FetchByObjectName(ctx context.Context, userID user.ID, objectName string) (*user_file.UserFile, error) {
	uf := new(UserFile)
	err := r.db.QueryRow(ctx, SelectUserFileByObjectName, uint64(userID), objectName).Scan(uf.scanDest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(uf), nil
}

func (r *Repository) CreateUserFile(ctx context.Context, userID user.ID, req *user_file.UserFile) (*user_file.UserFile, error) {
	uf := new(UserFile)

	err := r.db.QueryRow(
		ctx,
		InsertUserFile,
		uint64(userID), req.FolderID, req.Name, req.Extension, int64(req.SizeBytes), req.ObjectName,
	).Scan(uf.scanDest()...)
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, user_file.ErrObjectAlreadyRegistered
		}
		return nil, err
	}

	return fromDBModel(uf), nil
}

func (r *Repository) DeleteUserFile(ctx context.Context, userID user.ID, fileUUID uuid.UUID) (*user_file.UserFile, error) {
	uf := new(UserFile)
	err := r.db.QueryRow(ctx, SoftDeleteUserFile, uint64(userID), fileUUID).Scan(uf.scanDest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(uf), nil
}
