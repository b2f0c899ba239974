package http

import (
	"errors"

	"github.com/ferdian3456/threadit/internal/middleware"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/usecase"
	"github.com/ferdian3456/threadit/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GroupController struct {
	GroupUsecase *usecase.GroupUsecase
	Log          *zap.Logger
}

func NewGroupController(groupUsecase *usecase.GroupUsecase, zap *zap.Logger) *GroupController {
	return &GroupController{
		GroupUsecase: groupUsecase,
		Log:          zap,
	}
}

func (controller *GroupController) SearchGroups(ctx *fiber.Ctx) error {
	var validationErr *model.ValidationError

	response, err := controller.GroupUsecase.SearchGroups(ctx)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *GroupController) CreateGroup(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError

	response, err := controller.GroupUsecase.CreateGroup(ctx, userId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendValidationErrorResponse(ctx, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
	}

	return util.SendCreatedResponseWithData(ctx, response)
}
