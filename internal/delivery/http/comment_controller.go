package http

import (
	"errors"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/middleware"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/thread"
	"github.com/ferdian3456/threadit/internal/usecase"
	"github.com/ferdian3456/threadit/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CommentController struct {
	CommentUsecase *usecase.CommentUsecase
	Log            *zap.Logger
}

func NewCommentController(commentUsecase *usecase.CommentUsecase, zap *zap.Logger) *CommentController {
	return &CommentController{
		CommentUsecase: commentUsecase,
		Log:            zap,
	}
}

func isThreadError(err error) bool {
	return errors.Is(err, thread.ErrDanglingReference) || errors.Is(err, thread.ErrDuplicateId) || errors.Is(err, thread.ErrCycle)
}

func (controller *CommentController) GetCommentThread(ctx *fiber.Ctx) error {
	var validationErr *model.ValidationError

	response, err := controller.CommentUsecase.GetCommentThread(ctx, ctx.Params("postId"))
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		if isThreadError(err) {
			return util.SendErrorResponseCommentThread(ctx, middleware.GetLoggerFromContext(ctx), err)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *CommentController) CreateComment(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.CommentCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.CommentUsecase.CreateComment(ctx, ctx.Params("postId"), userId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendCreatedResponseWithData(ctx, response)
}

func (controller *CommentController) DeleteComment(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError

	err := controller.CommentUsecase.DeleteComment(ctx, ctx.Params("postId"), ctx.Params("commentId"), userId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
