package exception

import (
	"errors"
	"fmt"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func Recovery(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				var errMsg string
				switch v := r.(type) {
				case error:
					errMsg = v.Error()
				case string:
					errMsg = v
				default:
					errMsg = fmt.Sprintf("%v", v)
				}

				log.Error("panic occurred and recovered",
					zap.String("error", errMsg),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
				)

				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
						"message": constant.ERR_INTERNAL_SERVER_ERROR_MESSAGE,
					},
				})
			}
		}()

		return c.Next()
	}
}

// ErrorHandler renders errors that reach fiber itself, such as unknown routes
// or oversized bodies, in the same shape the controllers use.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code := constant.ERR_VALIDATION_CODE
			if fiberErr.Code == fiber.StatusNotFound {
				code = constant.ERR_NOT_FOUND_ERROR
			}

			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    code,
					"message": fiberErr.Message,
				},
			})
		}

		log.Error("unhandled error", zap.Error(err), zap.String("path", c.Path()))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
				"message": constant.ERR_INTERNAL_SERVER_ERROR_MESSAGE,
			},
		})
	}
}
