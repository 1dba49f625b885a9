package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/service"
)

type CommentHandler struct {
	service *service.CommentService
}

func NewCommentHandler(service *service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// List - GET /posts/:id/comments?sort=newest|oldest|top|none&view=tree|flat
func (h *CommentHandler) List(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "post")
	}

	sort := c.Query("sort", "newest")
	view := c.Query("view", "tree")
	if view != "tree" && view != "flat" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_INPUT", "view must be tree or flat"))
	}

	thread, err := h.service.Tree(c.UserContext(), postID, viewerFrom(c), sort)
	if err != nil {
		return respondError(c, err)
	}

	tc := dto.ThreadContext{Authors: thread.Authors, MyVotes: thread.MyVotes}
	resp := dto.CommentThreadResponse{
		PostID: postID,
		Sort:   sort,
		View:   view,
		Total:  thread.Total,
	}
	if view == "flat" {
		resp.Comments = dto.MapCommentList(thread.Roots, tc)
	} else {
		resp.Comments = dto.MapCommentTree(thread.Roots, tc)
	}
	return c.JSON(dto.SuccessResponse(resp, ""))
}

// Create - POST /posts/:id/comments
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	postID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "post")
	}

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	comment, err := h.service.Create(c.UserContext(), *userID, postID, req.Text, req.ParentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapComment(comment), "Comment created"))
}

// Delete - DELETE /comments/:id
func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	commentID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "comment")
	}

	if err := h.service.Delete(c.UserContext(), *userID, commentID, middleware.IsAdmin(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Comment deleted"))
}

// Vote - POST /comments/:id/vote
func (h *CommentHandler) Vote(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	commentID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "comment")
	}

	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	total, err := h.service.Vote(c.UserContext(), *userID, commentID, req.Vote)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(dto.VoteResponse{CommentID: commentID, Votes: total, MyVote: req.Vote}, ""))
}

// Unvote - DELETE /comments/:id/vote
func (h *CommentHandler) Unvote(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	commentID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "comment")
	}

	total, err := h.service.Unvote(c.UserContext(), *userID, commentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(dto.VoteResponse{CommentID: commentID, Votes: total}, ""))
}
