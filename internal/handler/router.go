package handler

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/travellinq/backend/internal/middleware"
)

// Handlers groups every HTTP handler the API mounts.
type Handlers struct {
	Post         *PostHandler
	Comment      *CommentHandler
	Buddy        *BuddyHandler
	Notification *NotificationHandler
	Message      *MessageHandler
	Upload       *UploadHandler
	Admin        *AdminHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes mounts the v1 API on api. The websocket endpoint is mounted
// only when h.WebSocket is set.
func RegisterRoutes(api fiber.Router, h *Handlers, authMiddleware *middleware.AuthMiddleware, profiles *middleware.ProfileMiddleware) {
	required := []fiber.Handler{authMiddleware.Required(), profiles.Ensure()}
	optional := []fiber.Handler{authMiddleware.Optional(), profiles.Ensure()}
	auth := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, required...), handler)
	}
	maybeAuth := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, optional...), handler)
	}

	// Posts
	postRoutes := api.Group("/posts")
	postRoutes.Get("/", h.Post.List)
	postRoutes.Get("/nearby", h.Post.Nearby)
	postRoutes.Post("/", auth(h.Post.Create)...)
	postRoutes.Get("/:id", maybeAuth(h.Post.Get)...)
	postRoutes.Delete("/:id", auth(h.Post.Delete)...)
	postRoutes.Post("/:id/report", auth(h.Admin.ReportPost)...)

	// Comments
	postRoutes.Get("/:id/comments", maybeAuth(h.Comment.List)...)
	postRoutes.Post("/:id/comments", auth(h.Comment.Create)...)
	commentRoutes := api.Group("/comments")
	commentRoutes.Delete("/:id", auth(h.Comment.Delete)...)
	commentRoutes.Post("/:id/vote", auth(h.Comment.Vote)...)
	commentRoutes.Delete("/:id/vote", auth(h.Comment.Unvote)...)
	commentRoutes.Post("/:id/report", auth(h.Admin.ReportComment)...)

	// Buddies
	buddyRoutes := api.Group("/buddies")
	buddyRoutes.Get("/", auth(h.Buddy.List)...)
	buddyRoutes.Get("/pending", auth(h.Buddy.Pending)...)
	buddyRoutes.Post("/:id/respond", auth(h.Buddy.Respond)...)
	buddyRoutes.Put("/:id/radius", auth(h.Buddy.SetRadius)...)
	buddyRoutes.Delete("/:id", auth(h.Buddy.Remove)...)
	buddyRoutes.Post("/:user_id", auth(h.Buddy.Request)...)
	api.Put("/me/location", auth(h.Buddy.UpdateLocation)...)

	// Notifications
	notifRoutes := api.Group("/notifications")
	notifRoutes.Get("/", auth(h.Notification.List)...)
	notifRoutes.Get("/count", auth(h.Notification.Count)...)
	notifRoutes.Post("/read-all", auth(h.Notification.MarkAllAsRead)...)
	notifRoutes.Patch("/:id/read", auth(h.Notification.MarkAsRead)...)
	notifRoutes.Delete("/:id", auth(h.Notification.Delete)...)

	// Conversations
	convRoutes := api.Group("/conversations")
	convRoutes.Get("/", auth(h.Message.ListConversations)...)
	convRoutes.Post("/", auth(h.Message.StartConversation)...)
	convRoutes.Get("/:id/messages", auth(h.Message.ListMessages)...)
	convRoutes.Post("/:id/messages", auth(h.Message.Send)...)
	convRoutes.Post("/:id/read", auth(h.Message.MarkRead)...)

	// Uploads
	api.Post("/uploads/presign", auth(h.Upload.Presign)...)

	// Admin
	adminRoutes := api.Group("/admin", authMiddleware.Required(), authMiddleware.AdminOnly(), profiles.Ensure())
	adminRoutes.Get("/reports", h.Admin.ListReports)
	adminRoutes.Patch("/reports/:id", h.Admin.ResolveReport)
	adminRoutes.Post("/comments/:id/hide", h.Admin.HideComment)
	adminRoutes.Post("/comments/:id/unhide", h.Admin.UnhideComment)
	adminRoutes.Post("/posts/:id/hide", h.Admin.HidePost)
	adminRoutes.Post("/posts/:id/unhide", h.Admin.UnhidePost)
	adminRoutes.Get("/users", h.Admin.ListUsers)
	adminRoutes.Patch("/users/:id/active", h.Admin.SetUserActive)
	adminRoutes.Get("/dashboard/stats", h.Admin.DashboardStats)

	// Realtime
	if h.WebSocket != nil {
		api.Get("/ws", h.WebSocket.WebSocketUpgrade(authMiddleware), websocket.New(h.WebSocket.HandleWebSocket))
	}
}
