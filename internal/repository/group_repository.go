package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ferdian3456/threadit/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type GroupRepository struct {
	Log      *zap.Logger
	DB       *pgxpool.Pool
	DBObject *minio.Client
}

func NewGroupRepository(zap *zap.Logger, db *pgxpool.Pool, minio *minio.Client) *GroupRepository {
	return &GroupRepository{
		Log:      zap,
		DB:       db,
		DBObject: minio,
	}
}

func (repository *GroupRepository) CreateGroup(ctx context.Context, tx pgx.Tx, group model.Group) error {
	query := "INSERT INTO groups (id, name, image_id, create_datetime, update_datetime, create_user_id, update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7)"

	_, err := tx.Exec(ctx, query, group.Id, group.Name, group.ImageId, group.CreateDatetime, group.UpdateDatetime, group.CreateUserId, group.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *GroupRepository) CreateGroupImage(ctx context.Context, tx pgx.Tx, groupImage model.GroupImage) error {
	query := "INSERT INTO group_images (id, group_id, bucket, object_key, mime_type, size, create_datetime, update_datetime, create_user_id, update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)"

	_, err := tx.Exec(ctx, query, groupImage.Id, groupImage.GroupId, groupImage.Bucket, groupImage.ObjectKey, groupImage.MimeType, groupImage.Size, groupImage.CreateDatetime, groupImage.UpdateDatetime, groupImage.CreateUserId, groupImage.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *GroupRepository) UpdateGroupImageId(ctx context.Context, tx pgx.Tx, groupId uuid.UUID, imageId uuid.UUID, updateUserId uuid.UUID, updateDatetime time.Time) error {
	query := "UPDATE groups SET image_id = $1, update_datetime = $2, update_user_id = $3 WHERE id = $4"

	_, err := tx.Exec(ctx, query, imageId, updateDatetime, updateUserId, groupId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *GroupRepository) CheckGroupNameUnique(ctx context.Context, name string) (int, error) {
	query := "SELECT 1 FROM groups WHERE LOWER(name) = LOWER($1) LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, name).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}
		return exists, err
	}

	return exists, nil
}

func (repository *GroupRepository) CheckGroupExists(ctx context.Context, groupId uuid.UUID) (int, error) {
	query := "SELECT 1 FROM groups WHERE id = $1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, groupId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}
		return exists, err
	}

	return exists, nil
}

// GetGroups lists groups by name. An empty search returns the first groups
// alphabetically, otherwise names are matched case insensitively.
func (repository *GroupRepository) GetGroups(ctx context.Context, search string, limit int, minioFullUrl string) ([]model.GroupResponse, error) {
	var rows pgx.Rows
	var err error

	if search == "" {
		query := `
			SELECT g.id, g.name, gi.object_key, g.create_datetime
			FROM groups g
			LEFT JOIN group_images gi ON g.image_id = gi.id
			ORDER BY g.name ASC
			LIMIT $1
		`
		rows, err = repository.DB.Query(ctx, query, limit)
	} else {
		query := `
			SELECT g.id, g.name, gi.object_key, g.create_datetime
			FROM groups g
			LEFT JOIN group_images gi ON g.image_id = gi.id
			WHERE g.name ILIKE '%' || $1 || '%'
			ORDER BY g.name ASC
			LIMIT $2
		`
		rows, err = repository.DB.Query(ctx, query, search, limit)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []model.GroupResponse{}

	for rows.Next() {
		var group model.GroupResponse
		err := rows.Scan(&group.Id, &group.Name, &group.Image, &group.CreateDatetime)
		if err != nil {
			return nil, err
		}

		if group.Image != nil {
			imageUrl := fmt.Sprintf("%s/%s.webp", minioFullUrl, *group.Image)
			group.Image = &imageUrl
		}

		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groups, nil
}

// MinIO - Object
func (repository *GroupRepository) UploadGroupObject(ctx context.Context, bucketName string, imageName string, imageFile *bytes.Reader, imageSize int64) error {
	_, err := repository.DBObject.PutObject(ctx, bucketName, imageName+".webp", imageFile, imageSize,
		minio.PutObjectOptions{
			ContentType:  "image/webp",
			CacheControl: "public, max-age=31536000, immutable",
		})
	if err != nil {
		return err
	}

	return nil
}

func (repository *GroupRepository) DeleteGroupObject(ctx context.Context, bucketName string, imageName string) error {
	err := repository.DBObject.RemoveObject(ctx, bucketName, imageName+".webp", minio.RemoveObjectOptions{})
	if err != nil {
		return err
	}

	return nil
}
