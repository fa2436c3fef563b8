package router

import (
	"time"

	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/service"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/13
 * @file: router_project.go
 * @description: 项目、生命周期、成员、里程碑路由
 */

func (rt *Router) projectRouter(r fiber.Router) {
	projectGroup := r.Group("/projects")
	{
		projectGroup.Get("/", rt.listProjects)
		projectGroup.Post("/", rt.createProject)
		// 需在 /:projectId 之前注册
		projectGroup.Get("/attention-required", rt.attentionRequired)

		projectGroup.Get("/:projectId", rt.getProject)
		projectGroup.Put("/:projectId", rt.updateProject)
		projectGroup.Delete("/:projectId", rt.deleteProject)

		// lifecycle
		projectGroup.Post("/:projectId/start", rt.startProject)
		projectGroup.Post("/:projectId/pause", rt.pauseProject)
		projectGroup.Post("/:projectId/resume", rt.resumeProject)
		projectGroup.Post("/:projectId/complete", rt.completeProject)
		projectGroup.Post("/:projectId/cancel", rt.cancelProject)
		projectGroup.Post("/:projectId/archive", rt.archiveProject)
		projectGroup.Post("/:projectId/obsolete", rt.markObsolete)
		projectGroup.Post("/:projectId/update-completion", rt.updateCompletion)
		projectGroup.Put("/:projectId/dates", rt.updateDates)
		projectGroup.Get("/:projectId/health", rt.projectHealth)
		projectGroup.Get("/:projectId/activity", rt.listActivity)

		// members
		projectGroup.Get("/:projectId/members", rt.listMembers)
		projectGroup.Post("/:projectId/members", rt.addMember)
		projectGroup.Delete("/:projectId/members/:userId", rt.removeMember)

		// milestones
		projectGroup.Get("/:projectId/milestones", rt.listMilestones)
		projectGroup.Post("/:projectId/milestones", rt.createMilestone)
		projectGroup.Put("/:projectId/milestones/:milestoneId", rt.updateMilestone)
	}
}

func (rt *Router) listProjects(c *fiber.Ctx) error {
	projects, err := rt.Services.Project.ListProjects(c.UserContext(), currentUser(c), c.Query("status"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, projects)
	return nil
}

func (rt *Router) createProject(c *fiber.Ctx) error {
	var req service.CreateProjectReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	project, err := rt.Services.Project.CreateProject(c.UserContext(), currentUser(c), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, project)
	return nil
}

func (rt *Router) getProject(c *fiber.Ctx) error {
	project, err := rt.Services.Project.GetProject(c.UserContext(), currentUser(c), c.Params("projectId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, project)
	return nil
}

func (rt *Router) updateProject(c *fiber.Ctx) error {
	var req service.UpdateProjectReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	project, err := rt.Services.Project.UpdateProject(c.UserContext(), currentUser(c), c.Params("projectId"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, project)
	return nil
}

type reasonReq struct {
	Reason string `json:"reason"`
}

type completeReq struct {
	CompletionNotes string `json:"completionNotes"`
}

type startReq struct {
	StartDate *time.Time `json:"startDate"`
}

// transition runs a lifecycle operation and answers with the project.
func (rt *Router) transition(c *fiber.Ctx, op func() (*model.Project, error)) error {
	project, err := op()
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, project)
	return nil
}

func (rt *Router) startProject(c *fiber.Ctx) error {
	var req startReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	return rt.transition(c, func() (*model.Project, error) {
		return rt.Services.Lifecycle.Start(c.UserContext(), currentUser(c), c.Params("projectId"), req.StartDate)
	})
}

func (rt *Router) pauseProject(c *fiber.Ctx) error {
	var req reasonReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	return rt.transition(c, func() (*model.Project, error) {
		return rt.Services.Lifecycle.Pause(c.UserContext(), currentUser(c), c.Params("projectId"), req.Reason)
	})
}

func (rt *Router) resumeProject(c *fiber.Ctx) error {
	return rt.transition(c, func() (*model.Project, error) {
		return rt.Services.Lifecycle.Resume(c.UserContext(), currentUser(c), c.Params("projectId"))
	})
}

func (rt *Router) completeProject(c *fiber.Ctx) error {
	var req completeReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	return rt.transition(c, func() (*model.Project, error) {
		return rt.Services.Lifecycle.Complete(c.UserContext(), currentUser(c), c.Params("projectId"), req.CompletionNotes)
	})
}

func (rt *Router) cancelProject(c *fiber.Ctx) error {
	var req reasonReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	return rt.transition(c, func() (*model.Project, error) {
		return rt.Services.Lifecycle.Cancel(c.UserContext(), currentUser(c), c.Params("projectId"), req.Reason)
	})
}

func (rt *Router) archiveProject(c *fiber.Ctx) error {
	return rt.transition(c, func() (*model.Project, error) {
		return rt.Services.Lifecycle.Archive(c.UserContext(), currentUser(c), c.Params("projectId"))
	})
}

func (rt *Router) markObsolete(c *fiber.Ctx) error {
	var req reasonReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	return rt.transition(c, func() (*model.Project, error) {
		return rt.Services.Lifecycle.MarkObsolete(c.UserContext(), currentUser(c), c.Params("projectId"), req.Reason)
	})
}

func (rt *Router) updateDates(c *fiber.Ctx) error {
	var req service.UpdateDatesReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	return rt.transition(c, func() (*model.Project, error) {
		return rt.Services.Lifecycle.UpdateDates(c.UserContext(), currentUser(c), c.Params("projectId"), req)
	})
}

func (rt *Router) updateCompletion(c *fiber.Ctx) error {
	stats, err := rt.Services.Lifecycle.UpdateCompletion(c.UserContext(), currentUser(c), c.Params("projectId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, stats)
	return nil
}

func (rt *Router) projectHealth(c *fiber.Ctx) error {
	health, err := rt.Services.Lifecycle.Health(c.UserContext(), currentUser(c), c.Params("projectId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, health)
	return nil
}

func (rt *Router) attentionRequired(c *fiber.Ctx) error {
	projects, err := rt.Services.Lifecycle.RequiringAttention(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, projects)
	return nil
}

func (rt *Router) listActivity(c *fiber.Ctx) error {
	logs, err := rt.Services.Activity.List(c.UserContext(), currentUser(c), c.Params("projectId"), queryLimit(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, logs)
	return nil
}

func (rt *Router) listMembers(c *fiber.Ctx) error {
	members, err := rt.Services.Project.ListMembers(c.UserContext(), currentUser(c), c.Params("projectId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, members)
	return nil
}

func (rt *Router) addMember(c *fiber.Ctx) error {
	var req service.AddMemberReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	member, err := rt.Services.Project.AddMember(c.UserContext(), currentUser(c), c.Params("projectId"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, member)
	return nil
}

func (rt *Router) removeMember(c *fiber.Ctx) error {
	if err := rt.Services.Project.RemoveMember(c.UserContext(), currentUser(c), c.Params("projectId"), c.Params("userId")); err != nil {
		return fail(c, err)
	}
	c.Locals(consts.OPERATION, "")
	return nil
}

func (rt *Router) listMilestones(c *fiber.Ctx) error {
	milestones, err := rt.Services.Milestone.ListMilestones(c.UserContext(), currentUser(c), c.Params("projectId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, milestones)
	return nil
}

func (rt *Router) createMilestone(c *fiber.Ctx) error {
	var req service.MilestoneReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	milestone, err := rt.Services.Milestone.CreateMilestone(c.UserContext(), currentUser(c), c.Params("projectId"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, milestone)
	return nil
}

func (rt *Router) updateMilestone(c *fiber.Ctx) error {
	var req service.MilestoneReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	milestone, err := rt.Services.Milestone.UpdateMilestone(c.UserContext(), currentUser(c), c.Params("projectId"), c.Params("milestoneId"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, milestone)
	return nil
}

func (rt *Router) deleteProject(c *fiber.Ctx) error {
	if err := rt.Services.Project.DeleteProject(c.UserContext(), currentUser(c), c.Params("projectId")); err != nil {
		return fail(c, err)
	}
	c.Locals(consts.OPERATION, "")
	return nil
}
