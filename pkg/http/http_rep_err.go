package http

import (
	"github.com/gofiber/fiber/v2"
)

type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  any    `json:"errMsg"`
	Reason  string `json:"reason,omitempty"`
	Path    string `json:"path,omitempty"`
}

// WithRepErrStatus 设置 HTTP 状态码并返回带机器可读 reason 的错误体
func WithRepErrStatus(c *fiber.Ctx, status int, code int, errMsg, reason string) error {
	return c.Status(status).JSON(ResponseErr{
		ErrCode: code,
		ErrMsg:  errMsg,
		Reason:  reason,
		Path:    c.Path(),
	})
}
