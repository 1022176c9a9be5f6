package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	PresignedURL struct {
		URL        string    `json:"url"`
		ObjectName string    `json:"objectName"`
		ExpiresAt  time.Time `json:"expiresAt"`
	}
	File struct {
		ID         uuid.UUID  `json:"id"`
		Name       string     `json:"name"`
		Extension  string     `json:"extension"`
		Size       uint64     `json:"size"`
		ObjectName string     `json:"objectName"`
		FolderID   *uuid.UUID `json:"folderId"`
		CreatedAt  time.Time  `json:"createdAt"`
		UpdatedAt  time.Time  `json:"updatedAt"`
	}
	Files        []File
	ResponseData struct {
		Data Files `json:"data"`
	}
)
