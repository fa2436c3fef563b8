package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/go-arcade/agileboard/pkg/http"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// ExceptionMiddleware 异常中间件
// 捕获 panic，返回 500 状态码和统一错误体，堆栈只写日志
func ExceptionMiddleware(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Ctx(c.UserContext()).Errorw("panic recovered",
				"path", c.Path(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			err = http.WithRepErrStatus(c, fiber.StatusInternalServerError,
				http.InternalError.Code, errorToString(r), "INTERNAL")
		}
	}()

	return c.Next()
}

func errorToString(r any) string {
	switch v := r.(type) {
	case http.ResponseErr:
		// 符合预期的错误，可以直接返回给客户端
		if errMsg, ok := v.ErrMsg.(string); ok {
			return errMsg
		}
		return http.InternalError.Msg
	default:
		// 不把内部错误和堆栈暴露给客户端
		return http.InternalError.Msg
	}
}
