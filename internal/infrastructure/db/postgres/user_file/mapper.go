package user_file

import (
	"palmr-api/internal/domain/user"
	domain "palmr-api/internal/domain/user_file"
)

func fromDBModel(model *UserFile) *domain.UserFile {
	var uf = &domain.UserFile{
		UUID:     model.UUID,
		UserID:   user.ID(model.UserID),
		FolderID: model.FolderID,

		Name:       model.Name,
		Extension:  model.Extension,
		SizeBytes:  uint64(model.SizeBytes),
		ObjectName: model.ObjectName,

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		DeletedAt: model.DeletedAt,
	}

	return uf
}

func fromDBModels(models *UserFiles) domain.UserFiles {
	ufs := make(domain.UserFiles, len(*models))
	for idx, u := range *models {
		ufs[idx] = fromDBModel(u)
	}

	return ufs
}
