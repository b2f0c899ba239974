package http

import (
	"errors"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/middleware"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/usecase"
	"github.com/ferdian3456/threadit/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type PostController struct {
	PostUsecase *usecase.PostUsecase
	Log         *zap.Logger
	Config      *koanf.Koanf
}

func NewPostController(postUsecase *usecase.PostUsecase, zap *zap.Logger, koanf *koanf.Koanf) *PostController {
	return &PostController{
		PostUsecase: postUsecase,
		Log:         zap,
		Config:      koanf,
	}
}

func (controller *PostController) GetPosts(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError

	response, err := controller.PostUsecase.GetPosts(ctx, userId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *PostController) GetPost(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError

	response, err := controller.PostUsecase.GetPost(ctx, ctx.Params("postId"), userId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *PostController) CreatePost(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.PostCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.PostUsecase.CreatePost(ctx, userId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendCreatedResponseWithData(ctx, response)
}

func (controller *PostController) DeletePost(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError

	err := controller.PostUsecase.DeletePost(ctx, ctx.Params("postId"), userId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
