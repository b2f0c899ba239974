package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/repository"
	"github.com/ferdian3456/threadit/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	groupImageSize = 256

	uniqueViolationCode = "23505"
)

type GroupUsecase struct {
	GroupRepository *repository.GroupRepository
	DB              *pgxpool.Pool
	Log             *zap.Logger
	Config          *koanf.Koanf
}

func NewGroupUsecase(groupRepository *repository.GroupRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *GroupUsecase {
	return &GroupUsecase{
		GroupRepository: groupRepository,
		DB:              db,
		Log:             zap,
		Config:          koanf,
	}
}

func minioFullUrl(config *koanf.Koanf) string {
	return fmt.Sprintf("%s%s/%s", config.String("MINIO_HTTP"), config.String("MINIO_URL"), config.String("MINIO_BUCKET_NAME"))
}

func (usecase *GroupUsecase) SearchGroups(ctx *fiber.Ctx) (model.GroupListResponse, error) {
	response := model.GroupListResponse{}

	search := strings.TrimSpace(ctx.Query("search", ""))
	if len(search) > constant.GROUP_NAME_MAX_LENGTH {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Search must be at most %d characters", constant.GROUP_NAME_MAX_LENGTH),
			Param:   "search",
		}
	}

	groups, err := usecase.GroupRepository.GetGroups(ctx.Context(), search, constant.GROUP_SEARCH_LIMIT, minioFullUrl(usecase.Config))
	if err != nil {
		return response, err
	}

	response.Data = groups

	return response, nil
}

func (usecase *GroupUsecase) CreateGroup(ctx *fiber.Ctx, userId uuid.UUID) (model.GroupResponse, error) {
	ctxContext := ctx.Context()
	response := model.GroupResponse{}

	name := strings.TrimSpace(ctx.FormValue("name"))
	if name == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name is required to not be empty",
			Param:   "name",
		}
	} else if len(name) < constant.GROUP_NAME_MIN_LENGTH {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Name must be at least %d characters", constant.GROUP_NAME_MIN_LENGTH),
			Param:   "name",
		}
	} else if len(name) > constant.GROUP_NAME_MAX_LENGTH {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Name must be at most %d characters", constant.GROUP_NAME_MAX_LENGTH),
			Param:   "name",
		}
	}

	exists, err := usecase.GroupRepository.CheckGroupNameUnique(ctxContext, name)
	if err != nil {
		return response, err
	}

	if exists == 1 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Group name is already taken",
			Param:   "name",
		}
	}

	// image is optional
	fieldName := "image"
	var image *util.WebPImage

	fileHeader, err := ctx.FormFile(fieldName)
	if err == nil && fileHeader.Size != 0 {
		processed, err := util.ProcessSquareImage(fileHeader, fieldName, groupImageSize)
		if err != nil {
			return response, err
		}
		image = &processed
	}

	now := time.Now().UTC()
	groupId := uuid.New()
	group := model.Group{
		Id:             groupId,
		Name:           name,
		ImageId:        nil,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	bucketName := usecase.Config.String("MINIO_BUCKET_NAME")

	commited := false

	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return response, err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	err = usecase.GroupRepository.CreateGroup(ctxContext, tx, group)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Group name is already taken",
				Param:   "name",
			}
		}
		return response, err
	}

	var objectKey string
	if image != nil {
		imageId := uuid.New()
		objectKey = fmt.Sprintf("group/%s", imageId)

		groupImage := model.GroupImage{
			Id:             imageId,
			GroupId:        groupId,
			Bucket:         bucketName,
			ObjectKey:      objectKey,
			MimeType:       image.MimeType,
			Size:           image.Size,
			CreateDatetime: now,
			UpdateDatetime: now,
			CreateUserId:   userId,
			UpdateUserId:   userId,
		}

		err = usecase.GroupRepository.CreateGroupImage(ctxContext, tx, groupImage)
		if err != nil {
			return response, err
		}

		err = usecase.GroupRepository.UpdateGroupImageId(ctxContext, tx, groupId, imageId, userId, now)
		if err != nil {
			return response, err
		}

		err = usecase.GroupRepository.UploadGroupObject(ctxContext, bucketName, objectKey, image.Body, image.Size)
		if err != nil {
			return response, err
		}
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		if objectKey != "" {
			removeErr := usecase.GroupRepository.DeleteGroupObject(ctxContext, bucketName, objectKey)
			if removeErr != nil {
				usecase.Log.Warn("failed to remove orphaned group image", zap.String("objectKey", objectKey), zap.Error(removeErr))
			}
		}
		return response, err
	}

	commited = true

	response.Id = groupId
	response.Name = name
	response.CreateDatetime = now
	if objectKey != "" {
		imageUrl := fmt.Sprintf("%s/%s.webp", minioFullUrl(usecase.Config), objectKey)
		response.Image = &imageUrl
	}

	return response, nil
}
