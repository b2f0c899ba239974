package model

import (
	"testing"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestValidationErrorStatus(t *testing.T) {
	tests := map[string]int{
		constant.ERR_NOT_FOUND_ERROR:                 fiber.StatusNotFound,
		constant.ERR_UNAUTHORIZED_ERROR:              fiber.StatusUnauthorized,
		constant.ERR_FORBIDDEN_ERROR:                 fiber.StatusForbidden,
		constant.ERR_VALIDATION_CODE:                 fiber.StatusBadRequest,
		constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE: fiber.StatusBadRequest,
	}

	for code, status := range tests {
		err := &ValidationError{Code: code, Message: "message"}
		assert.Equal(t, status, err.Status(), code)
		assert.Equal(t, "message", err.Error())
	}
}
