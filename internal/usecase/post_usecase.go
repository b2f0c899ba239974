package usecase

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type PostUsecase struct {
	PostRepository    *repository.PostRepository
	GroupRepository   *repository.GroupRepository
	CommentRepository *repository.CommentRepository
	Log               *zap.Logger
	Config            *koanf.Koanf
}

func NewPostUsecase(postRepository *repository.PostRepository, groupRepository *repository.GroupRepository, commentRepository *repository.CommentRepository, zap *zap.Logger, koanf *koanf.Koanf) *PostUsecase {
	return &PostUsecase{
		PostRepository:    postRepository,
		GroupRepository:   groupRepository,
		CommentRepository: commentRepository,
		Log:               zap,
		Config:            koanf,
	}
}

func parsePostId(postIdParam string) (uuid.UUID, error) {
	postId, err := uuid.Parse(postIdParam)
	if err != nil {
		return postId, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid post id",
			Param:   "postId",
		}
	}

	return postId, nil
}

func (usecase *PostUsecase) GetPosts(ctx *fiber.Ctx, userId uuid.UUID) (model.PostListResponse, error) {
	response := model.PostListResponse{}

	limit := ctx.QueryInt("limit", constant.DEFAULT_POST_LIMIT)
	cursor := ctx.Query("cursor", "")

	if limit <= 0 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Limit must be greater than 0",
			Param:   "limit",
		}
	} else if limit > constant.MAX_POST_LIMIT {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Limit is exceeded max limit: %d", constant.MAX_POST_LIMIT),
			Param:   "limit",
		}
	}

	var postCursor model.PostCursor
	if cursor != "" {
		b, err := base64.RawURLEncoding.DecodeString(cursor)
		if err != nil {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Invalid cursor",
				Param:   "cursor",
			}
		}

		err = sonic.Unmarshal(b, &postCursor)
		if err != nil {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Invalid cursor",
				Param:   "cursor",
			}
		}
	}

	// one extra row tells whether another page exists
	posts, err := usecase.PostRepository.GetPosts(ctx.Context(), userId, limit+1, &postCursor, minioFullUrl(usecase.Config))
	if err != nil {
		return response, err
	}

	response.Data = posts

	if len(posts) > limit {
		response.Data = posts[:limit]

		last := posts[limit-1]
		nextCursor := model.PostCursor{
			Id:             last.Id,
			CreateDatetime: last.CreateDatetime,
		}

		b, err := sonic.Marshal(nextCursor)
		if err != nil {
			return response, err
		}

		response.Page.NextCursor = base64.RawURLEncoding.EncodeToString(b)
	}

	return response, nil
}

func (usecase *PostUsecase) GetPost(ctx *fiber.Ctx, postIdParam string, userId uuid.UUID) (model.PostResponse, error) {
	postId, err := parsePostId(postIdParam)
	if err != nil {
		return model.PostResponse{}, err
	}

	post, err := usecase.PostRepository.GetPost(ctx.Context(), userId, postId, minioFullUrl(usecase.Config))
	if err != nil {
		return post, err
	}

	return post, nil
}

func (usecase *PostUsecase) CreatePost(ctx *fiber.Ctx, userId uuid.UUID, payload model.PostCreateRequest) (model.PostCreateResponse, error) {
	ctxContext := ctx.Context()
	response := model.PostCreateResponse{}

	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Title is required to not be empty",
			Param:   "title",
		}
	} else if len(payload.Title) > constant.POST_TITLE_MAX_LENGTH {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Title must be at most %d characters", constant.POST_TITLE_MAX_LENGTH),
			Param:   "title",
		}
	}

	if payload.Description != nil {
		description := strings.TrimSpace(*payload.Description)
		if description == "" {
			payload.Description = nil
		} else if len(description) > constant.POST_DESCRIPTION_MAX_LENGTH {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: fmt.Sprintf("Description must be at most %d characters", constant.POST_DESCRIPTION_MAX_LENGTH),
				Param:   "description",
			}
		} else {
			payload.Description = &description
		}
	}

	groupId, err := uuid.Parse(payload.GroupId)
	if err != nil {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid group id",
			Param:   "groupId",
		}
	}

	exists, err := usecase.GroupRepository.CheckGroupExists(ctxContext, groupId)
	if err != nil {
		return response, err
	}

	if exists != 1 {
		return response, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Group not found",
			Param:   "groupId",
		}
	}

	now := time.Now().UTC()
	post := model.Post{
		Id:             uuid.New(),
		GroupId:        groupId,
		AuthorId:       userId,
		Title:          payload.Title,
		Description:    payload.Description,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	err = usecase.PostRepository.CreatePost(ctxContext, post)
	if err != nil {
		return response, err
	}

	response.Id = post.Id

	return response, nil
}

func (usecase *PostUsecase) DeletePost(ctx *fiber.Ctx, postIdParam string, userId uuid.UUID) error {
	postId, err := parsePostId(postIdParam)
	if err != nil {
		return err
	}

	ctxContext := ctx.Context()

	exists, err := usecase.PostRepository.CheckPostExists(ctxContext, postId)
	if err != nil {
		return err
	}

	if exists != 1 {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Post not found",
			Param:   "postId",
		}
	}

	owner, err := usecase.PostRepository.CheckPostOwnership(ctxContext, postId, userId)
	if err != nil {
		return err
	}

	if owner != 1 {
		return &model.ValidationError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You are not the author of this post",
			Param:   "postId",
		}
	}

	// comments and votes go with the post through ON DELETE CASCADE
	err = usecase.PostRepository.DeletePost(ctxContext, postId)
	if err != nil {
		return err
	}

	err = usecase.CommentRepository.DeleteCommentSnapshot(ctxContext, postId)
	if err != nil {
		usecase.Log.Warn("failed to drop comment snapshot", zap.String("postId", postId.String()), zap.Error(err))
	}

	return nil
}
