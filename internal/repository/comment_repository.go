package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type CommentRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewCommentRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *CommentRepository {
	return &CommentRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

// Postgresql
func (repository *CommentRepository) CreateComment(ctx context.Context, comment model.PostComment) error {
	query := "INSERT INTO post_comments (id, post_id, author_id, parent_id, content, create_datetime, update_datetime, create_user_id, update_user_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)"

	_, err := repository.DB.Exec(ctx, query, comment.Id, comment.PostId, comment.AuthorId, comment.ParentId, comment.Content, comment.CreateDatetime, comment.UpdateDatetime, comment.CreateUserId, comment.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

// GetComments returns every comment of a post in creation order. Replies are
// not nested here, that happens when the snapshot is turned into threads.
func (repository *CommentRepository) GetComments(ctx context.Context, postId uuid.UUID) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.parent_id, c.content, c.create_datetime, c.update_datetime,
		       u.id, u.username, u.image
		FROM post_comments c
		INNER JOIN users u ON c.author_id = u.id
		WHERE c.post_id = $1
		ORDER BY c.create_datetime ASC, c.id ASC
	`

	rows, err := repository.DB.Query(ctx, query, postId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}

	for rows.Next() {
		var comment model.Comment
		err := rows.Scan(&comment.Id, &comment.PostId, &comment.ParentId, &comment.Content, &comment.CreateDatetime, &comment.UpdateDatetime,
			&comment.Author.Id, &comment.Author.Username, &comment.Author.AvatarImage)
		if err != nil {
			return nil, err
		}

		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func (repository *CommentRepository) GetComment(ctx context.Context, commentId uuid.UUID) (model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.parent_id, c.content, c.create_datetime, c.update_datetime,
		       u.id, u.username, u.image
		FROM post_comments c
		INNER JOIN users u ON c.author_id = u.id
		WHERE c.id = $1
	`

	var comment model.Comment
	err := repository.DB.QueryRow(ctx, query, commentId).Scan(&comment.Id, &comment.PostId, &comment.ParentId, &comment.Content, &comment.CreateDatetime, &comment.UpdateDatetime,
		&comment.Author.Id, &comment.Author.Username, &comment.Author.AvatarImage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Comment not found",
				Param:   "commentId",
			}
		}
		return comment, err
	}

	return comment, nil
}

func (repository *CommentRepository) CheckCommentExists(ctx context.Context, commentId uuid.UUID, postId uuid.UUID) (int, error) {
	query := "SELECT 1 FROM post_comments WHERE id = $1 AND post_id = $2"

	var exists int
	err := repository.DB.QueryRow(ctx, query, commentId, postId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}

		return exists, err
	}

	return exists, nil
}

func (repository *CommentRepository) CheckCommentOwnership(ctx context.Context, commentId uuid.UUID, userId uuid.UUID) (int, error) {
	query := "SELECT 1 FROM post_comments WHERE id = $1 AND author_id = $2"

	var exists int
	err := repository.DB.QueryRow(ctx, query, commentId, userId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}

		return exists, err
	}

	return exists, nil
}

func (repository *CommentRepository) DeleteComment(ctx context.Context, commentId uuid.UUID) error {
	query := "DELETE FROM post_comments WHERE id = $1"

	_, err := repository.DB.Exec(ctx, query, commentId)
	if err != nil {
		return err
	}

	return nil
}

// Redis - Cache
//
// Snapshots are keyed by a per-post version that every comment write bumps.
// A reader that loaded Postgres before a write can only store its list under
// the old version, which no later reader asks for.
func commentVersionKey(postId uuid.UUID) string {
	return fmt.Sprintf("comments:post:%s:version", postId)
}

func commentSnapshotKey(postId uuid.UUID, version int64) string {
	return fmt.Sprintf("comments:post:%s:v%d", postId, version)
}

// GetCommentVersion returns 0 for a post whose comments were never written.
func (repository *CommentRepository) GetCommentVersion(ctx context.Context, postId uuid.UUID) (int64, error) {
	version, err := repository.DBCache.Get(ctx, commentVersionKey(postId)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	return version, nil
}

// BumpCommentVersion must run after the comment write is committed.
func (repository *CommentRepository) BumpCommentVersion(ctx context.Context, postId uuid.UUID) (int64, error) {
	version, err := repository.DBCache.Incr(ctx, commentVersionKey(postId)).Result()
	if err != nil {
		return 0, err
	}

	// the previous snapshot can no longer be read, free it early
	err = repository.DBCache.Del(ctx, commentSnapshotKey(postId, version-1)).Err()
	if err != nil {
		repository.Log.Debug("failed to remove superseded comment snapshot", zap.String("postId", postId.String()), zap.Error(err))
	}

	return version, nil
}

// GetCommentSnapshot returns the cached flat comment list of a post at the
// given version. The bool is false on a cache miss.
func (repository *CommentRepository) GetCommentSnapshot(ctx context.Context, postId uuid.UUID, version int64) ([]model.Comment, bool, error) {
	raw, err := repository.DBCache.Get(ctx, commentSnapshotKey(postId, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	comments := []model.Comment{}
	err = sonic.Unmarshal(raw, &comments)
	if err != nil {
		return nil, false, err
	}

	return comments, true, nil
}

func (repository *CommentRepository) SetCommentSnapshot(ctx context.Context, postId uuid.UUID, version int64, comments []model.Comment, ttl time.Duration) error {
	raw, err := sonic.Marshal(comments)
	if err != nil {
		return err
	}

	err = repository.DBCache.Set(ctx, commentSnapshotKey(postId, version), raw, ttl).Err()
	if err != nil {
		return err
	}

	return nil
}

// DeleteCommentSnapshot forgets every cached state of a deleted post.
func (repository *CommentRepository) DeleteCommentSnapshot(ctx context.Context, postId uuid.UUID) error {
	version, err := repository.GetCommentVersion(ctx, postId)
	if err != nil {
		return err
	}

	err = repository.DBCache.Del(ctx, commentVersionKey(postId), commentSnapshotKey(postId, version)).Err()
	if err != nil {
		return err
	}

	return nil
}
