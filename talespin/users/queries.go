package users

const userColumns = `id, COALESCE(email, ''), name, avatar_url, COALESCE(provider, ''), COALESCE(provider_id, ''),
		is_premium, daily_ai_conversations_used, last_conversation_reset, created_at, updated_at`

const (
	queryFindOrCreateByProvider = `
		INSERT INTO app_users (provider, provider_id, email, name, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider, provider_id)
		DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING ` + userColumns

	queryFindByID = `
		SELECT ` + userColumns + `
		FROM app_users
		WHERE id = $1
	`

	queryUpdateProfile = `
		UPDATE app_users
		SET name = COALESCE($1, name),
			avatar_url = COALESCE($2, avatar_url),
			updated_at = NOW()
		WHERE id = $3
		RETURNING ` + userColumns

	queryIsPremium = `
		SELECT is_premium FROM app_users WHERE id = $1
	`
)
