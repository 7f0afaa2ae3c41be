package social

const (
	queryUnfollow = `
		DELETE FROM followers WHERE follower_id = $1 AND following_id = $2
	`

	queryFollow = `
		INSERT INTO followers (follower_id, following_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`

	queryFollowers = `
		SELECT u.id, u.name, u.avatar_url, f.created_at
		FROM followers f
		JOIN app_users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`

	queryFollowing = `
		SELECT u.id, u.name, u.avatar_url, f.created_at
		FROM followers f
		JOIN app_users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`
)
