package community

const (
	// $1 is the viewer, empty for anonymous requests
	queryFeed = `
		SELECT p.id::text, p.user_id, p.content_type, p.content_id::text, p.caption,
			p.likes_count, p.comments_count,
			EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1) AS liked,
			p.created_at
		FROM community_posts p
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`

	queryCreatePost = `
		INSERT INTO community_posts (user_id, content_type, content_id, caption)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, user_id, content_type, content_id::text, caption, likes_count, comments_count, false, created_at
	`

	queryPostExists = `
		SELECT EXISTS (SELECT 1 FROM community_posts WHERE id = $1)
	`

	queryLockPost = `
		SELECT likes_count FROM community_posts WHERE id = $1 FOR UPDATE
	`

	queryDeleteLike = `
		DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
	`

	queryInsertLike = `
		INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
	`

	queryAdjustLikes = `
		UPDATE community_posts
		SET likes_count = GREATEST(likes_count + $2, 0)
		WHERE id = $1
		RETURNING likes_count
	`

	queryListComments = `
		SELECT id::text, post_id::text, user_id, content, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	queryInsertComment = `
		INSERT INTO post_comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id::text, post_id::text, user_id, content, created_at
	`

	queryIncrementComments = `
		UPDATE community_posts SET comments_count = comments_count + 1 WHERE id = $1
	`
)
