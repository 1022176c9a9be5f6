package user_file

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"palmr-api/internal/domain/user"
)

type (
	UserFile struct {
		UUID     uuid.UUID
		UserID   user.ID
		FolderID *uuid.UUID

		Name       string
		Extension  string
		SizeBytes  uint64
		ObjectName string

		CreatedAt time.Time
		UpdatedAt time.Time
		DeletedAt *time.Time
	}
	UserFiles []*UserFile
)

// ObjectPrefix is the storage namespace owned by a user.
func ObjectPrefix(owner user.UUID) string {
	return "users/" + owner.String() + "/"
}

// NewObjectName returns an extension-less key under the owner's prefix,
// partitioned by upload day.
func NewObjectName(owner user.UUID, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s%04d/%02d/%02d/%s",
		ObjectPrefix(owner), now.Year(), int(now.Month()), now.Day(), uuid.NewString())
}

// OwnsObject reports whether objectName is a clean key inside the owner's
// prefix.
func OwnsObject(owner user.UUID, objectName string) bool {
	prefix := ObjectPrefix(owner)
	if !strings.HasPrefix(objectName, prefix) || len(objectName) == len(prefix) {
		return false
	}
	if path.Clean(objectName) != objectName || strings.ContainsRune(objectName, '\\') {
		return false
	}
	for _, seg := range strings.Split(objectName, "/") {
		if seg == ".." || seg == "." {
			return false
		}
	}
	return true
}
