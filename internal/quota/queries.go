package quota

const (
	// the no-op update makes RETURNING yield the existing row on conflict
	queryGetOrCreateUsage = `
		INSERT INTO app_users (id, daily_ai_conversations_used, last_conversation_reset)
		VALUES ($1, 0, $2)
		ON CONFLICT (id) DO UPDATE SET id = app_users.id
		RETURNING id, is_premium, daily_ai_conversations_used, last_conversation_reset
	`

	queryCompareAndSwapUsage = `
		UPDATE app_users
		SET daily_ai_conversations_used = $4,
			last_conversation_reset = $5,
			updated_at = NOW()
		WHERE id = $1
			AND daily_ai_conversations_used = $2
			AND last_conversation_reset = $3
	`
)
