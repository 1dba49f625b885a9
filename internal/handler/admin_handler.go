package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/service"
)

type AdminHandler struct {
	moderation *service.ModerationService
}

func NewAdminHandler(moderation *service.ModerationService) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

// ============================================================================
// REPORTS (any signed-in user)
// ============================================================================

// ReportComment - POST /comments/:id/report
func (h *AdminHandler) ReportComment(c *fiber.Ctx) error {
	return h.report(c, domain.ReportTargetComment)
}

// ReportPost - POST /posts/:id/report
func (h *AdminHandler) ReportPost(c *fiber.Ctx) error {
	return h.report(c, domain.ReportTargetPost)
}

func (h *AdminHandler) report(c *fiber.Ctx, target domain.ReportTarget) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	targetID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, string(target))
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	report, err := h.moderation.Report(c.UserContext(), *userID, target, targetID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapReport(report), "Report submitted"))
}

// ============================================================================
// REPORT QUEUE
// ============================================================================

// ListReports - GET /admin/reports?status&target_type
func (h *AdminHandler) ListReports(c *fiber.Ctx) error {
	page, limit := pagination(c, 20, 100)

	reports, total, err := h.moderation.ListReports(c.UserContext(), c.Query("status"), c.Query("target_type"), page, limit)
	if err != nil {
		return respondError(c, err)
	}

	result := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, dto.MapReport(&reports[i]))
	}
	return c.JSON(dto.SuccessWithMeta(result, dto.NewMeta(page, limit, total)))
}

// ResolveReport - PATCH /admin/reports/:id
func (h *AdminHandler) ResolveReport(c *fiber.Ctx) error {
	adminID := middleware.GetUserID(c)
	if adminID == nil {
		return unauthorized(c)
	}
	reportID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "report")
	}

	var req dto.ResolveReportRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	report, err := h.moderation.ResolveReport(c.UserContext(), *adminID, reportID,
		domain.ReportStatus(req.Status), req.AdminNotes, req.HideContent)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(dto.MapReport(report), "Report updated"))
}

// ============================================================================
// CONTENT
// ============================================================================

// HideComment - POST /admin/comments/:id/hide
func (h *AdminHandler) HideComment(c *fiber.Ctx) error {
	return h.contentAction(c, "comment", func(adminID, id uuid.UUID, reason string) error {
		return h.moderation.HideComment(c.UserContext(), adminID, id, reason)
	}, "Comment hidden")
}

// UnhideComment - POST /admin/comments/:id/unhide
func (h *AdminHandler) UnhideComment(c *fiber.Ctx) error {
	return h.contentAction(c, "comment", func(adminID, id uuid.UUID, _ string) error {
		return h.moderation.UnhideComment(c.UserContext(), adminID, id)
	}, "Comment restored")
}

// HidePost - POST /admin/posts/:id/hide
func (h *AdminHandler) HidePost(c *fiber.Ctx) error {
	return h.contentAction(c, "post", func(adminID, id uuid.UUID, reason string) error {
		return h.moderation.HidePost(c.UserContext(), adminID, id, reason)
	}, "Post hidden")
}

// UnhidePost - POST /admin/posts/:id/unhide
func (h *AdminHandler) UnhidePost(c *fiber.Ctx) error {
	return h.contentAction(c, "post", func(adminID, id uuid.UUID, _ string) error {
		return h.moderation.UnhidePost(c.UserContext(), adminID, id)
	}, "Post restored")
}

func (h *AdminHandler) contentAction(c *fiber.Ctx, what string, action func(adminID, id uuid.UUID, reason string) error, msg string) error {
	adminID := middleware.GetUserID(c)
	if adminID == nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, what)
	}

	// The body is optional.
	var req dto.HideContentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}

	if err := action(*adminID, id, req.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, msg))
}

// ============================================================================
// USERS
// ============================================================================

// ListUsers - GET /admin/users?search&is_active
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, limit := pagination(c, 20, 100)

	var isActive *bool
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		isActive = &active
	}

	users, total, err := h.moderation.ListUsers(c.UserContext(), c.Query("search"), isActive, page, limit)
	if err != nil {
		return respondError(c, err)
	}

	result := make([]dto.UserListDTO, 0, len(users))
	for i := range users {
		result = append(result, dto.MapUserList(&users[i]))
	}
	return c.JSON(dto.SuccessWithMeta(result, dto.NewMeta(page, limit, total)))
}

// SetUserActive - PATCH /admin/users/:id/active
func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	adminID := middleware.GetUserID(c)
	if adminID == nil {
		return unauthorized(c)
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user")
	}

	var req dto.SetUserActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.moderation.SetUserActive(c.UserContext(), *adminID, userID, req.IsActive); err != nil {
		return respondError(c, err)
	}
	msg := "User deactivated"
	if req.IsActive {
		msg = "User activated"
	}
	return c.JSON(dto.SuccessResponse(nil, msg))
}

// DashboardStats - GET /admin/dashboard/stats
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.moderation.DashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(stats, ""))
}
