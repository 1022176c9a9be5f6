package user_file

import (
	"time"

	"github.com/google/uuid"
)

type (
	UserFile struct {
		ID       uint64
		UUID     uuid.UUID
		UserID   uint64
		FolderID *uuid.UUID

		Name       string
		Extension  string
		SizeBytes  int64
		ObjectName string

		CreatedAt time.Time
		UpdatedAt time.Time
		DeletedAt *time.Time
	}
	UserFiles []*UserFile
)

func (uf *UserFile) scanDest() []any {
	return []any{
		&uf.ID,
		&uf.UUID,
		&uf.UserID,
		&uf.FolderID,

		&uf.Name,
		&uf.Extension,
		&uf.SizeBytes,
		&uf.ObjectName,

		&uf.CreatedAt,
		&uf.UpdatedAt,
		&uf.DeletedAt,
	}
}
