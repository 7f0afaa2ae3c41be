package conversations

const conversationColumns = `id::text, user_id, character_id::text, story_id::text, title, messages, created_at, updated_at`

const (
	queryListByUser = `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	queryGet = `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE id = $1
	`

	queryCreate = `
		INSERT INTO conversations (user_id, character_id, story_id, title)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + conversationColumns

	// appends in one statement so concurrent chats never drop each other's messages
	queryAppendMessages = `
		UPDATE conversations
		SET messages = messages || $2::jsonb,
			updated_at = NOW()
		WHERE id = $1
	`

	queryDelete = `
		DELETE FROM conversations WHERE id = $1
	`
)
