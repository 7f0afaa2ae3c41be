package stories

const storyColumns = `id::text, user_id, character_id::text, title, description, genre, content,
		is_public, is_private, likes_count, created_at, updated_at`

const (
	queryList = `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE is_private = false
			AND ($1::boolean IS NULL OR is_public = $1)
			AND ($2 = '' OR genre = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	queryGet = `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE id = $1
	`

	queryCreate = `
		INSERT INTO stories (user_id, character_id, title, description, genre, content, is_public, is_private)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + storyColumns

	queryUpdate = `
		UPDATE stories
		SET title = COALESCE($2, title),
			description = COALESCE($3, description),
			genre = COALESCE($4, genre),
			content = COALESCE($5::jsonb, content),
			is_public = COALESCE($6, is_public),
			is_private = COALESCE($7, is_private),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + storyColumns

	queryDelete = `
		DELETE FROM stories WHERE id = $1
	`
)
