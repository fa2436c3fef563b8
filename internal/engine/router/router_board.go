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
 * @file: router_board.go
 * @description: 看板、列表、卡片、评论路由
 */

func (rt *Router) boardRouter(r fiber.Router) {
	boardGroup := r.Group("/boards")
	{
		boardGroup.Get("/", rt.listBoards)
		boardGroup.Post("/", rt.createBoard)
		boardGroup.Get("/:boardId", rt.getBoard)
		boardGroup.Get("/:boardId/developers", rt.boardDevelopers)
		boardGroup.Post("/:boardId/lists", rt.createList)
	}

	r.Get("/lists/:listId/cards", rt.listCards)
	r.Post("/lists/:listId/cards", rt.createCard)

	cardGroup := r.Group("/cards")
	{
		cardGroup.Get("/:cardId", rt.getCard)
		cardGroup.Put("/:cardId", rt.updateCard)
		cardGroup.Delete("/:cardId", rt.deleteCard)
		cardGroup.Get("/:cardId/comments", rt.listComments)
		cardGroup.Post("/:cardId/comments", rt.addComment)
	}
}

func (rt *Router) listBoards(c *fiber.Ctx) error {
	projectId := c.Query("projectId")
	if projectId == "" {
		return fail(c, core.InvalidArgument("projectId is required"))
	}
	boards, err := rt.Services.Board.ListBoards(c.UserContext(), currentUser(c), projectId)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, boards)
	return nil
}

func (rt *Router) createBoard(c *fiber.Ctx) error {
	var req service.CreateBoardReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	board, err := rt.Services.Board.CreateBoard(c.UserContext(), currentUser(c), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, board)
	return nil
}

func (rt *Router) getBoard(c *fiber.Ctx) error {
	board, err := rt.Services.Board.GetBoard(c.UserContext(), currentUser(c), c.Params("boardId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, board)
	return nil
}

func (rt *Router) boardDevelopers(c *fiber.Ctx) error {
	developers, err := rt.Services.Board.BoardDevelopers(c.UserContext(), currentUser(c), c.Params("boardId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, developers)
	return nil
}

type createListReq struct {
	Name string `json:"name"`
}

func (rt *Router) createList(c *fiber.Ctx) error {
	var req createListReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	list, err := rt.Services.Board.CreateList(c.UserContext(), currentUser(c), c.Params("boardId"), req.Name)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, list)
	return nil
}

func (rt *Router) createCard(c *fiber.Ctx) error {
	var req service.CreateCardReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	card, err := rt.Services.Board.CreateCard(c.UserContext(), currentUser(c), c.Params("listId"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, card)
	return nil
}

func (rt *Router) updateCard(c *fiber.Ctx) error {
	var req service.UpdateCardReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	card, err := rt.Services.Board.UpdateCard(c.UserContext(), currentUser(c), c.Params("cardId"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, card)
	return nil
}

type commentReq struct {
	Content string `json:"content"`
}

func (rt *Router) listComments(c *fiber.Ctx) error {
	comments, err := rt.Services.Board.ListComments(c.UserContext(), currentUser(c), c.Params("cardId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, comments)
	return nil
}

func (rt *Router) addComment(c *fiber.Ctx) error {
	var req commentReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	comment, err := rt.Services.Board.AddComment(c.UserContext(), currentUser(c), c.Params("cardId"), req.Content)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, comment)
	return nil
}

func (rt *Router) getCard(c *fiber.Ctx) error {
	card, err := rt.Services.Board.GetCard(c.UserContext(), currentUser(c), c.Params("cardId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, card)
	return nil
}

func (rt *Router) listCards(c *fiber.Ctx) error {
	cards, err := rt.Services.Board.ListCards(c.UserContext(), currentUser(c), c.Params("listId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(consts.DETAIL, cards)
	return nil
}

func (rt *Router) deleteCard(c *fiber.Ctx) error {
	if err := rt.Services.Board.DeleteCard(c.UserContext(), currentUser(c), c.Params("cardId")); err != nil {
		return fail(c, err)
	}
	c.Locals(consts.OPERATION, "")
	return nil
}
