package middleware

import (
	"context"

	"github.com/go-arcade/agileboard/pkg/trace/inject"
	"github.com/gofiber/fiber/v2"
)

// headerCarrier exposes fiber request headers to the otel propagator
type headerCarrier struct {
	c *fiber.Ctx
}

func (h headerCarrier) Get(key string) string {
	return h.c.Get(key)
}

func (h headerCarrier) Set(key, value string) {
	h.c.Request().Header.Set(key, value)
}

func (h headerCarrier) Keys() []string {
	keys := make([]string, 0)
	h.c.Request().Header.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}

// TraceMiddleware 链路追踪中间件
// 为每个请求开启 server span，并把带 span 的 context 放回 fiber
func TraceMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if ctx == nil {
			ctx = context.Background()
		}

		_, err := inject.HTTPServerRequest(ctx, c.Method(), c.Path(), headerCarrier{c: c}, func(ctx context.Context) (int, error) {
			c.SetUserContext(ctx)
			nextErr := c.Next()
			return c.Response().StatusCode(), nextErr
		})
		return err
	}
}
