package usecase

import (
	"context"
	"time"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UpvoteUsecase struct {
	UpvoteRepository *repository.UpvoteRepository
	PostRepository   *repository.PostRepository
	Log              *zap.Logger
}

func NewUpvoteUsecase(upvoteRepository *repository.UpvoteRepository, postRepository *repository.PostRepository, zap *zap.Logger) *UpvoteUsecase {
	return &UpvoteUsecase{
		UpvoteRepository: upvoteRepository,
		PostRepository:   postRepository,
		Log:              zap,
	}
}

func (usecase *UpvoteUsecase) findPost(ctx context.Context, postIdParam string) (uuid.UUID, error) {
	postId, err := parsePostId(postIdParam)
	if err != nil {
		return postId, err
	}

	exists, err := usecase.PostRepository.CheckPostExists(ctx, postId)
	if err != nil {
		return postId, err
	}

	if exists != 1 {
		return postId, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Post not found",
			Param:   "postId",
		}
	}

	return postId, nil
}

func (usecase *UpvoteUsecase) tally(ctx context.Context, postId uuid.UUID, userId uuid.UUID) (model.UpvoteResponse, error) {
	response := model.UpvoteResponse{}

	sum, err := usecase.UpvoteRepository.GetUpvoteSum(ctx, postId)
	if err != nil {
		return response, err
	}

	vote, err := usecase.UpvoteRepository.GetUserVote(ctx, postId, userId)
	if err != nil {
		return response, err
	}

	response.Upvotes = sum
	response.UserVote = vote

	return response, nil
}

func (usecase *UpvoteUsecase) Vote(ctx *fiber.Ctx, postIdParam string, userId uuid.UUID, payload model.UpvoteRequest) (model.UpvoteResponse, error) {
	ctxContext := ctx.Context()

	if payload.Value != model.UpvoteValueUp && payload.Value != model.UpvoteValueDown {
		return model.UpvoteResponse{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Value must be 1 or -1",
			Param:   "value",
		}
	}

	postId, err := usecase.findPost(ctxContext, postIdParam)
	if err != nil {
		return model.UpvoteResponse{}, err
	}

	now := time.Now().UTC()
	upvote := model.PostUpvote{
		PostId:         postId,
		UserId:         userId,
		Value:          payload.Value,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	err = usecase.UpvoteRepository.UpsertUpvote(ctxContext, upvote)
	if err != nil {
		return model.UpvoteResponse{}, err
	}

	return usecase.tally(ctxContext, postId, userId)
}

func (usecase *UpvoteUsecase) RemoveVote(ctx *fiber.Ctx, postIdParam string, userId uuid.UUID) (model.UpvoteResponse, error) {
	ctxContext := ctx.Context()

	postId, err := usecase.findPost(ctxContext, postIdParam)
	if err != nil {
		return model.UpvoteResponse{}, err
	}

	err = usecase.UpvoteRepository.DeleteUpvote(ctxContext, postId, userId)
	if err != nil {
		return model.UpvoteResponse{}, err
	}

	return usecase.tally(ctxContext, postId, userId)
}

func (usecase *UpvoteUsecase) GetUpvotes(ctx *fiber.Ctx, postIdParam string, userId uuid.UUID) (model.UpvoteResponse, error) {
	ctxContext := ctx.Context()

	postId, err := usecase.findPost(ctxContext, postIdParam)
	if err != nil {
		return model.UpvoteResponse{}, err
	}

	return usecase.tally(ctxContext, postId, userId)
}
