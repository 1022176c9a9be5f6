package invite

const (
	columns = `id, token, expires_at, created_by, used_at, created_at`

	InsertInviteToken = `
		INSERT INTO invite_tokens (token, created_by, expires_at)
		VALUES ($1, $2, $3)
		RETURNING ` + columns
	SelectInviteToken = `
		SELECT ` + columns + `
		FROM invite_tokens
		WHERE token = $1
	`
	SelectInviteTokenForUpdate = SelectInviteToken + ` FOR UPDATE`
	MarkInviteTokenUsed        = `
		UPDATE invite_tokens
		SET used_at = $2
		WHERE id = $1 AND used_at IS NULL
	`
)
