package model

import (
	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/gofiber/fiber/v2"
)

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Status maps the error code to the HTTP status sent to the client.
func (e *ValidationError) Status() int {
	switch e.Code {
	case constant.ERR_NOT_FOUND_ERROR:
		return fiber.StatusNotFound
	case constant.ERR_UNAUTHORIZED_ERROR:
		return fiber.StatusUnauthorized
	case constant.ERR_FORBIDDEN_ERROR:
		return fiber.StatusForbidden
	default:
		return fiber.StatusBadRequest
	}
}
