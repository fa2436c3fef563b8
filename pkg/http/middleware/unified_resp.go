package middleware

import (
	"github.com/go-arcade/agileboard/internal/engine/consts"
	httpx "github.com/go-arcade/agileboard/pkg/http"
	"github.com/gofiber/fiber/v2"
)

// UnifiedResponseMiddleware 统一响应中间件
// handler 通过 c.Locals(consts.DETAIL, value) 设置响应数据，
// 无数据的写操作设置 c.Locals(consts.OPERATION, "")。
// 已经写出错误体（非 2xx）的响应保持不变。
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}

		if detail := c.Locals(consts.DETAIL); detail != nil {
			return httpx.WithRepJSON(c, detail)
		}
		if c.Locals(consts.OPERATION) != nil {
			return httpx.WithRepNotDetail(c)
		}
		return nil
	}
}
