package http

import (
	"errors"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/middleware"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/usecase"
	"github.com/ferdian3456/threadit/internal/util"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserController struct {
	UserUsecase *usecase.UserUsecase
	Log         *zap.Logger
}

func NewUserController(userUsecase *usecase.UserUsecase, zap *zap.Logger) *UserController {
	return &UserController{
		UserUsecase: userUsecase,
		Log:         zap,
	}
}

// sendUsecaseError answers validation failures with their own status and
// anything else as a logged 500.
func sendUsecaseError(ctx *fiber.Ctx, err error) error {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return util.SendValidationErrorResponse(ctx, validationErr)
	}

	return util.SendErrorResponseInternalServer(ctx, middleware.GetLoggerFromContext(ctx), err)
}

// bindBody decodes the request into payload, answering the request itself when
// the body is not valid JSON. ok is false once a response has been sent.
func bindBody(ctx *fiber.Ctx, payload any) (bool, error) {
	err := util.ReadRequestBody(ctx, payload)
	if err != nil {
		return false, util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	return true, nil
}

func (controller *UserController) Login(ctx *fiber.Ctx) error {
	var payload model.UserLoginRequest
	if ok, err := bindBody(ctx, &payload); !ok {
		return err
	}

	response, err := controller.UserUsecase.Login(ctx, payload)
	if err != nil {
		return sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *UserController) GetUserInfo(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	response, err := controller.UserUsecase.GetUser(ctx, userId)
	if err != nil {
		return sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *UserController) Logout(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	err := controller.UserUsecase.Logout(ctx, userId)
	if err != nil {
		return sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller *UserController) StartSignup(ctx *fiber.Ctx) error {
	var payload model.UserSignupStartRequest
	if ok, err := bindBody(ctx, &payload); !ok {
		return err
	}

	response, err := controller.UserUsecase.StartSignup(ctx, payload)
	if err != nil {
		return sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *UserController) VerifyOtp(ctx *fiber.Ctx) error {
	var payload model.UserVerifyOTPRequest
	if ok, err := bindBody(ctx, &payload); !ok {
		return err
	}

	err := controller.UserUsecase.VerifyOtp(ctx, payload)
	if err != nil {
		return sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller *UserController) VerifyUsername(ctx *fiber.Ctx) error {
	var payload model.UserVerifyUsernameRequest
	if ok, err := bindBody(ctx, &payload); !ok {
		return err
	}

	err := controller.UserUsecase.VerifyUsername(ctx, payload)
	if err != nil {
		return sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller *UserController) VerifyPassword(ctx *fiber.Ctx) error {
	var payload model.UserVerifyPasswordRequest
	if ok, err := bindBody(ctx, &payload); !ok {
		return err
	}

	response, err := controller.UserUsecase.VerifyPassword(ctx, payload)
	if err != nil {
		return sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *UserController) GetSignupStatus(ctx *fiber.Ctx) error {
	response, err := controller.UserUsecase.GetSignupStatus(ctx, ctx.Params("sessionId"))
	if err != nil {
		return sendUsecaseError(ctx, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}
