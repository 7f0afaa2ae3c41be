package characters

const characterColumns = `id::text, user_id, name, description, personality, backstory, avatar_url,
		style, is_public, likes_count, created_at, updated_at`

const (
	queryList = `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE ($1::boolean IS NULL OR is_public = $1)
			AND ($2 = '' OR style = $2)
			AND ($3 = '' OR user_id = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`

	queryGet = `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE id = $1
	`

	queryCreate = `
		INSERT INTO characters (user_id, name, description, personality, backstory, avatar_url, style, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + characterColumns

	// clears the embedding when the embedded text changes
	queryUpdate = `
		UPDATE characters
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			personality = COALESCE($4, personality),
			backstory = COALESCE($5, backstory),
			avatar_url = COALESCE($6, avatar_url),
			style = COALESCE($7, style),
			is_public = COALESCE($8, is_public),
			embedding = CASE
				WHEN $2::text IS NULL AND $3::text IS NULL AND $4::text IS NULL AND $7::text IS NULL THEN embedding
				ELSE NULL
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + characterColumns

	queryDelete = `
		DELETE FROM characters WHERE id = $1
	`

	querySetEmbedding = `
		UPDATE characters SET embedding = $2 WHERE id = $1
	`

	querySimilar = `
		SELECT ` + characterColumns + `, 1 - (embedding <=> $2) AS similarity
		FROM characters
		WHERE id <> $1
			AND is_public = true
			AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`

	queryGetEmbedding = `
		SELECT embedding FROM characters WHERE id = $1 AND embedding IS NOT NULL
	`

	queryMissingEmbeddings = `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE embedding IS NULL
		ORDER BY created_at
		LIMIT $1
	`
)
