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
	"go.uber.org/zap"
)

type UpvoteController struct {
	UpvoteUsecase *usecase.UpvoteUsecase
	Log           *zap.Logger
}

func NewUpvoteController(upvoteUsecase *usecase.UpvoteUsecase, zap *zap.Logger) *UpvoteController {
	return &UpvoteController{
		UpvoteUsecase: upvoteUsecase,
		Log:           zap,
	}
}

func (controller *UpvoteController) Vote(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.UpvoteRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.UpvoteUsecase.Vote(ctx, ctx.Params("postId"), userId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *UpvoteController) RemoveVote(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError

	response, err := controller.UpvoteUsecase.RemoveVote(ctx, ctx.Params("postId"), userId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *UpvoteController) GetUpvotes(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError

	response, err := controller.UpvoteUsecase.GetUpvotes(ctx, ctx.Params("postId"), userId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}
