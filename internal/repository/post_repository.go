package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PostRepository struct {
	Log *zap.Logger
	DB  *pgxpool.Pool
}

func NewPostRepository(zap *zap.Logger, db *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		Log: zap,
		DB:  db,
	}
}

const postSelect = `
	SELECT p.id, p.title, p.description, p.create_datetime, p.update_datetime,
	       g.id, g.name, gi.object_key,
	       u.id, u.username, u.image,
	       COALESCE(upvote_sums.upvotes, 0) AS upvotes,
	       COALESCE(viewer_vote.value, 0) AS user_vote,
	       COALESCE(comment_counts.comment_count, 0) AS comment_count
	FROM posts p
	INNER JOIN groups g ON p.group_id = g.id
	LEFT JOIN group_images gi ON g.image_id = gi.id
	INNER JOIN users u ON p.author_id = u.id
	LEFT JOIN (
		SELECT post_id, SUM(value) AS upvotes
		FROM post_upvotes
		GROUP BY post_id
	) upvote_sums ON p.id = upvote_sums.post_id
	LEFT JOIN post_upvotes viewer_vote ON p.id = viewer_vote.post_id AND viewer_vote.user_id = $1
	LEFT JOIN (
		SELECT post_id, COUNT(*) AS comment_count
		FROM post_comments
		GROUP BY post_id
	) comment_counts ON p.id = comment_counts.post_id
`

func scanPost(row pgx.Row, minioFullUrl string) (model.PostResponse, error) {
	var post model.PostResponse
	err := row.Scan(
		&post.Id, &post.Title, &post.Description, &post.CreateDatetime, &post.UpdateDatetime,
		&post.Group.Id, &post.Group.Name, &post.Group.Image,
		&post.Author.Id, &post.Author.Username, &post.Author.AvatarImage,
		&post.Upvotes, &post.UserVote, &post.CommentCount,
	)
	if err != nil {
		return post, err
	}

	if post.Group.Image != nil {
		imageUrl := fmt.Sprintf("%s/%s.webp", minioFullUrl, *post.Group.Image)
		post.Group.Image = &imageUrl
	}

	return post, nil
}

func (repository *PostRepository) GetPosts(ctx context.Context, viewerId uuid.UUID, limit int, cursor *model.PostCursor, minioFullUrl string) ([]model.PostResponse, error) {
	var rows pgx.Rows
	var err error

	if cursor.Id != uuid.Nil && !cursor.CreateDatetime.IsZero() {
		queryWithCursor := postSelect + `
			WHERE (p.create_datetime < $2 OR (p.create_datetime = $2 AND p.id < $3))
			ORDER BY p.create_datetime DESC, p.id DESC
			LIMIT $4
		`
		rows, err = repository.DB.Query(ctx, queryWithCursor, viewerId, cursor.CreateDatetime, cursor.Id, limit)
	} else {
		query := postSelect + `
			ORDER BY p.create_datetime DESC, p.id DESC
			LIMIT $2
		`
		rows, err = repository.DB.Query(ctx, query, viewerId, limit)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.PostResponse{}

	for rows.Next() {
		post, err := scanPost(rows, minioFullUrl)
		if err != nil {
			return nil, err
		}

		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (repository *PostRepository) GetPost(ctx context.Context, viewerId uuid.UUID, postId uuid.UUID, minioFullUrl string) (model.PostResponse, error) {
	query := postSelect + "WHERE p.id = $2"

	post, err := scanPost(repository.DB.QueryRow(ctx, query, viewerId, postId), minioFullUrl)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Post not found",
				Param:   "postId",
			}
		}
		return post, err
	}

	return post, nil
}

func (repository *PostRepository) CreatePost(ctx context.Context, post model.Post) error {
	query := "INSERT INTO posts (id, group_id, author_id, title, description, create_datetime, update_datetime, create_user_id, update_user_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)"

	_, err := repository.DB.Exec(ctx, query, post.Id, post.GroupId, post.AuthorId, post.Title, post.Description, post.CreateDatetime, post.UpdateDatetime, post.CreateUserId, post.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *PostRepository) CheckPostExists(ctx context.Context, postId uuid.UUID) (int, error) {
	query := "SELECT 1 FROM posts WHERE id = $1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, postId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}

		return exists, err
	}

	return exists, nil
}

func (repository *PostRepository) CheckPostOwnership(ctx context.Context, postId uuid.UUID, userId uuid.UUID) (int, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND author_id = $2"

	var exists int
	err := repository.DB.QueryRow(ctx, query, postId, userId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}

		return exists, err
	}

	return exists, nil
}

func (repository *PostRepository) DeletePost(ctx context.Context, postId uuid.UUID) error {
	query := "DELETE FROM posts WHERE id = $1"

	_, err := repository.DB.Exec(ctx, query, postId)
	if err != nil {
		return err
	}

	return nil
}
