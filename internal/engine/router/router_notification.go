package router

import (
	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/service"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/15
 * @file: router_notification.go
 * @description: 站内通知与用户管理路由
 */

func (rt *Router) notificationRouter(r fiber.Router) {
	notificationGroup := r.Group("/notifications")
	{
		notificationGroup.Get("/", rt.listNotifications)
		notificationGroup.Put("/mark-all-read", rt.markAllRead)
		notificationGroup.Put("/:notificationId/read", rt.markRead)
		notificationGroup.Delete("/:notificationId", rt.deleteNotification)
	}
}

// listNotifications marks the listed notifications read unless
// markAsRead=false is passed.
func (rt *Router) listNotifications(c *fiber.Ctx) error {
	notifications, err := rt.Services.Notifications.List(c.UserContext(), currentUser(c), c.QueryBool("markAsRead", true))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, notifications)
	return nil
}

func (rt *Router) markRead(c *fiber.Ctx) error {
	if err := rt.Services.Notifications.MarkRead(c.UserContext(), currentUser(c), c.Params("notificationId")); err != nil {
		return fail(c, err)
	}
	c.Locals(consts.OPERATION, "")
	return nil
}

func (rt *Router) markAllRead(c *fiber.Ctx) error {
	n, err := rt.Services.Notifications.MarkAllRead(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, fiber.Map{"updated": n})
	return nil
}

func (rt *Router) deleteNotification(c *fiber.Ctx) error {
	if err := rt.Services.Notifications.Delete(c.UserContext(), currentUser(c), c.Params("notificationId")); err != nil {
		return fail(c, err)
	}
	c.Locals(consts.OPERATION, "")
	return nil
}

type roleReq struct {
	Role string `json:"role"`
}

func (rt *Router) userRouter(r fiber.Router) {
	userGroup := r.Group("/users")
	{
		userGroup.Get("/", rt.listUsers)
		userGroup.Post("/", rt.createUser)
		userGroup.Put("/:userId/role", rt.setUserRole)
	}
	r.Put("/auth/me/email-notifications", rt.setEmailNotifications)
}

func (rt *Router) listUsers(c *fiber.Ctx) error {
	users, err := rt.Services.Users.ListUsers(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, users)
	return nil
}

func (rt *Router) createUser(c *fiber.Ctx) error {
	var req service.CreateUserReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := rt.Services.Users.CreateUser(c.UserContext(), currentUser(c), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, user)
	return nil
}

type emailNotificationsReq struct {
	Enabled *bool `json:"enabled"`
}

func (rt *Router) setEmailNotifications(c *fiber.Ctx) error {
	var req emailNotificationsReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if req.Enabled == nil {
		return fail(c, core.InvalidArgument("enabled is required"))
	}
	user, err := rt.Services.Users.SetEmailNotifications(c.UserContext(), currentUser(c), *req.Enabled)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, user)
	return nil
}

func (rt *Router) setUserRole(c *fiber.Ctx) error {
	var req roleReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := rt.Services.Identity.SetGlobalRole(c.UserContext(), currentUser(c), c.Params("userId"), req.Role)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, user)
	return nil
}
