package router

import (
	"strings"

	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/service"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/14
 * @file: router_auth.go
 * @description: 认证中间件与当前用户接口
 */

// authMiddleware resolves the bearer token to a local user and stores it
// in the fiber locals.
func (rt *Router) authMiddleware(c *fiber.Ctx) error {
	user, err := rt.Services.Identity.Authenticate(c.UserContext(), bearerToken(c.Get(fiber.HeaderAuthorization)))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.CurrentUser, service.CurrentUser{UserId: user.UserId, Email: user.Email})
	return c.Next()
}

func bearerToken(header string) string {
	if scheme, token, ok := strings.Cut(strings.TrimSpace(header), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func currentUser(c *fiber.Ctx) service.CurrentUser {
	user, _ := c.Locals(consts.CurrentUser).(service.CurrentUser)
	return user
}

func (rt *Router) authRouter(r fiber.Router) {
	authGroup := r.Group("/auth")
	{
		authGroup.Get("/me", rt.me)
		authGroup.Post("/sync-role", rt.syncRole)
	}
}

func (rt *Router) me(c *fiber.Ctx) error {
	me, err := rt.Services.Identity.Me(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, me)
	return nil
}

func (rt *Router) syncRole(c *fiber.Ctx) error {
	user, err := rt.Services.Identity.SyncRole(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, user)
	return nil
}
