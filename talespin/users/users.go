package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new user repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	var user User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.Provider,
		&user.ProviderID,
		&user.IsPremium,
		&user.DailyAIConversationsUsed,
		&user.LastConversationReset,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// finds a user by OAuth provider or creates a new one
func (r *Repository) FindOrCreateByProvider(
	ctx context.Context,
	provider, providerID, email, name, avatarURL string,
) (*User, error) {
	return scanUser(r.db.QueryRow(
		ctx,
		queryFindOrCreateByProvider,
		provider,
		providerID,
		email,
		name,
		avatarURL,
	))
}

// finds a user by their ID
func (r *Repository) FindByID(ctx context.Context, userID string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, queryFindByID, userID))
}

// updates a user's name and/or avatar URL
func (r *Repository) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, queryUpdateProfile, req.Name, req.AvatarURL, userID))
}

// reports whether the user has a premium subscription; unknown users are not premium
func (r *Repository) IsPremium(ctx context.Context, userID string) (bool, error) {
	var premium bool

	err := r.db.QueryRow(ctx, queryIsPremium, userID).Scan(&premium)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}

	return premium, err
}
