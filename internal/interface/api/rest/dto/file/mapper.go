package file

import (
	"github.com/google/uuid"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/domain/user_file"
)

func ToResponsePresignedURL(p ports.PresignedURL) PresignedURL {
	return PresignedURL{
		URL:        p.URL,
		ObjectName: p.ObjectName,
		ExpiresAt:  p.ExpiresAt,
	}
}

func ToResponseFile(uDomain user_file.UserFile) File {
	var f = File{
		ID:         uDomain.UUID,
		Name:       uDomain.Name,
		Extension:  uDomain.Extension,
		Size:       uDomain.SizeBytes,
		ObjectName: uDomain.ObjectName,
		FolderID:   uDomain.FolderID,
		CreatedAt:  uDomain.CreatedAt,
		UpdatedAt:  uDomain.UpdatedAt,
	}

	return f
}

func ToResponseFiles(ufDomain user_file.UserFiles) Files {
	fs := make(Files, len(ufDomain))
	for idx, uf := range ufDomain {
		fs[idx] = ToResponseFile(*uf)
	}

	return fs
}

// ToDomainUserFile expects a request that already passed validation.
func ToDomainUserFile(req RegisterRequest) user_file.UserFile {
	var uf = user_file.UserFile{
		Name:       req.Name,
		Extension:  req.Extension,
		SizeBytes:  uint64(req.Size),
		ObjectName: req.ObjectName,
	}
	if req.FolderID != nil {
		if id, err := uuid.Parse(*req.FolderID); err == nil {
			uf.FolderID = &id
		}
	}

	return uf
}
