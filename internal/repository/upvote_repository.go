package repository

import (
	"context"
	"errors"

	"github.com/ferdian3456/threadit/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UpvoteRepository struct {
	Log *zap.Logger
	DB  *pgxpool.Pool
}

func NewUpvoteRepository(zap *zap.Logger, db *pgxpool.Pool) *UpvoteRepository {
	return &UpvoteRepository{
		Log: zap,
		DB:  db,
	}
}

// UpsertUpvote keeps one vote per user and post, a second vote replaces the first.
func (repository *UpvoteRepository) UpsertUpvote(ctx context.Context, upvote model.PostUpvote) error {
	query := `
		INSERT INTO post_upvotes (post_id, user_id, value, create_datetime, update_datetime, create_user_id, update_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (post_id, user_id)
		DO UPDATE SET value = EXCLUDED.value, update_datetime = EXCLUDED.update_datetime, update_user_id = EXCLUDED.update_user_id
	`

	_, err := repository.DB.Exec(ctx, query, upvote.PostId, upvote.UserId, upvote.Value, upvote.CreateDatetime, upvote.UpdateDatetime, upvote.CreateUserId, upvote.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UpvoteRepository) DeleteUpvote(ctx context.Context, postId uuid.UUID, userId uuid.UUID) error {
	query := "DELETE FROM post_upvotes WHERE post_id = $1 AND user_id = $2"

	_, err := repository.DB.Exec(ctx, query, postId, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UpvoteRepository) GetUpvoteSum(ctx context.Context, postId uuid.UUID) (int64, error) {
	query := "SELECT COALESCE(SUM(value), 0) FROM post_upvotes WHERE post_id = $1"

	var sum int64
	err := repository.DB.QueryRow(ctx, query, postId).Scan(&sum)
	if err != nil {
		return sum, err
	}

	return sum, nil
}

func (repository *UpvoteRepository) GetUserVote(ctx context.Context, postId uuid.UUID, userId uuid.UUID) (int16, error) {
	query := "SELECT value FROM post_upvotes WHERE post_id = $1 AND user_id = $2"

	var value int16
	err := repository.DB.QueryRow(ctx, query, postId, userId).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return value, err
	}

	return value, nil
}
