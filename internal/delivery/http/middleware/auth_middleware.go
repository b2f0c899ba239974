package middleware

import (
	"errors"

	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/usecase"
	"github.com/ferdian3456/threadit/internal/util"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	Log         *zap.Logger
	UserUsecase *usecase.UserUsecase
}

func NewAuthMiddleware(zap *zap.Logger, userUsecase *usecase.UserUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		Log:         zap,
		UserUsecase: userUsecase,
	}
}

// ProtectedRoute accepts a request only when its bearer token is valid and
// still the one cached for the user. The user id is stored in Locals("userId").
func (middleware *AuthMiddleware) ProtectedRoute() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userId, err := middleware.UserUsecase.Authenticate(ctx, ctx.Get(fiber.HeaderAuthorization))
		if err != nil {
			var validationErr *model.ValidationError
			if errors.As(err, &validationErr) {
				return util.SendValidationErrorResponse(ctx, validationErr)
			}

			return util.SendErrorResponseInternalServer(ctx, middleware.Log, err)
		}

		ctx.Locals("userId", userId)

		return ctx.Next()
	}
}
