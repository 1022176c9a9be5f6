package user

const (
	Columns = `id, uuid, username, email, password_hash, first_name, last_name, image, is_admin, is_active, created_at, updated_at`

	SelectUserByID = `
		SELECT ` + Columns + `
		FROM users
		WHERE uuid = $1
	`
	SelectUserByLogin = `
		SELECT ` + Columns + `
		FROM users
		WHERE lower(username) = lower($1) OR lower(email) = lower($1)
		LIMIT 1
	`
	CountUsers = `SELECT count(*) FROM users`
	InsertUser = `
		INSERT INTO users (username, email, password_hash, first_name, last_name, is_admin, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + Columns
	UpdateUserImage = `
		UPDATE users
		SET image = $1,
		    updated_at = now()
		WHERE uuid = $2
		RETURNING ` + Columns
	SelectIdByUUID = `SELECT id FROM users WHERE uuid = $1::uuid`
)
