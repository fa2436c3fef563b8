package router

import (
	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/service"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/15
 * @file: router_sprint.go
 * @description: 迭代、用户故事、任务路由
 */

func (rt *Router) sprintRouter(r fiber.Router) {
	r.Get("/projects/:projectId/sprints", rt.listSprints)
	r.Post("/projects/:projectId/sprints", rt.createSprint)
	r.Get("/projects/:projectId/stories", rt.listStories)
	r.Post("/projects/:projectId/stories", rt.createStory)

	sprintGroup := r.Group("/sprints")
	{
		sprintGroup.Post("/:sprintId/start", rt.startSprint)
		sprintGroup.Post("/:sprintId/complete", rt.completeSprint)
		sprintGroup.Post("/:sprintId/stories/:storyId", rt.addStoryToSprint)
	}

	storyGroup := r.Group("/stories")
	{
		storyGroup.Put("/:storyId/status", rt.updateStoryStatus)
		storyGroup.Get("/:storyId/tasks", rt.listTasks)
		storyGroup.Post("/:storyId/tasks", rt.createTask)
	}

	r.Put("/tasks/:taskId/status", rt.updateTaskStatus)
}

type statusReq struct {
	Status string `json:"status"`
}

func (rt *Router) listSprints(c *fiber.Ctx) error {
	sprints, err := rt.Services.Sprint.ListSprints(c.UserContext(), currentUser(c), c.Params("projectId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, sprints)
	return nil
}

func (rt *Router) createSprint(c *fiber.Ctx) error {
	var req service.CreateSprintReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	sprint, err := rt.Services.Sprint.CreateSprint(c.UserContext(), currentUser(c), c.Params("projectId"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, sprint)
	return nil
}

func (rt *Router) startSprint(c *fiber.Ctx) error {
	sprint, err := rt.Services.Sprint.StartSprint(c.UserContext(), currentUser(c), c.Params("sprintId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, sprint)
	return nil
}

func (rt *Router) completeSprint(c *fiber.Ctx) error {
	sprint, err := rt.Services.Sprint.CompleteSprint(c.UserContext(), currentUser(c), c.Params("sprintId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, sprint)
	return nil
}

func (rt *Router) listStories(c *fiber.Ctx) error {
	stories, err := rt.Services.Sprint.ListStories(c.UserContext(), currentUser(c), c.Params("projectId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, stories)
	return nil
}

func (rt *Router) createStory(c *fiber.Ctx) error {
	var req service.StoryReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	story, err := rt.Services.Sprint.CreateStory(c.UserContext(), currentUser(c), c.Params("projectId"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, story)
	return nil
}

func (rt *Router) updateStoryStatus(c *fiber.Ctx) error {
	var req statusReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	story, err := rt.Services.Sprint.UpdateStoryStatus(c.UserContext(), currentUser(c), c.Params("storyId"), model.StoryStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, story)
	return nil
}

func (rt *Router) listTasks(c *fiber.Ctx) error {
	tasks, err := rt.Services.Sprint.ListTasks(c.UserContext(), currentUser(c), c.Params("storyId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, tasks)
	return nil
}

func (rt *Router) createTask(c *fiber.Ctx) error {
	var req service.TaskReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	task, err := rt.Services.Sprint.CreateTask(c.UserContext(), currentUser(c), c.Params("storyId"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, task)
	return nil
}

func (rt *Router) updateTaskStatus(c *fiber.Ctx) error {
	var req statusReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	task, err := rt.Services.Sprint.UpdateTaskStatus(c.UserContext(), currentUser(c), c.Params("taskId"), model.TaskStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, task)
	return nil
}

func (rt *Router) addStoryToSprint(c *fiber.Ctx) error {
	story, err := rt.Services.Sprint.AddStoryToSprint(c.UserContext(), currentUser(c), c.Params("sprintId"), c.Params("storyId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, story)
	return nil
}
