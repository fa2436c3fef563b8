package middleware

import (
	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-Id"
	maxRequestIDLen = 128
)

// RequestMiddleware set request id
// 复用上游传入的 X-Request-Id，缺失或不合法时生成新的 uuid
func RequestMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestId := c.Get(HeaderRequestID)
		if !validRequestID(requestId) {
			requestId = uuid.NewString()
		}
		c.Request().Header.Set(HeaderRequestID, requestId)
		c.Set(HeaderRequestID, requestId)
		c.Locals(consts.RequestID, requestId)
		return c.Next()
	}
}

// RequestID returns the id assigned by RequestMiddleware.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(consts.RequestID).(string)
	return id
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
