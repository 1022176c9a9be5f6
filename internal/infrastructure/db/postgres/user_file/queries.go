package user_file

const (
	columns = `id, uuid, user_id, folder_id, name, extension, size_bytes, object_name, created_at, updated_at, deleted_at`

	SelectUserFiles = `
		SELECT ` + columns + `
		FROM files
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 50 OFFSET ( ($2 - 1) * 50 )
	`
	SelectUserFileByObjectName = `
		SELECT ` + columns + `
		FROM files
		WHERE user_id = $1 AND object_name = $2 AND deleted_at IS NULL
	`
	InsertUserFile = `
		INSERT INTO files (user_id, folder_id, name, extension, size_bytes, object_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + columns
	SoftDeleteUserFile = `
		UPDATE files
		SET deleted_at = now()
		WHERE user_id = $1 AND uuid = $2 AND deleted_at IS NULL
		RETURNING ` + columns
)
