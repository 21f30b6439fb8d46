package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moves/metrics"
	"moves/middleware"
)

// NewApp builds the Fiber app with middleware and every route registered.
func NewApp(h *Handler, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Moves",
		ErrorHandler: ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(middleware.RequestLogger(m))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(splitOrigins(h.cfg.AllowOrigins), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	h.Routes(app, m)
	return app
}

// Routes registers the HTTP API on app.
func (h *Handler) Routes(app *fiber.App, m *metrics.Metrics) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to Moves API"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// Rate limiter for auth endpoints (10 requests per minute per IP)
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts. Please try again later.",
			})
		},
	})

	auth := app.Group("/auth")
	auth.Post("/register", authLimiter, h.Register)
	auth.Post("/login", authLimiter, h.Login)
	auth.Get("/me", middleware.AuthRequired(h.cfg.JWTSecret), h.GetCurrentUser)

	groups := app.Group("/groups")
	groups.Get("/user/:id/groups", h.ListUserGroups)
	groups.Get("/user/:id/invitations", h.ListInvitations)
	groups.Post("/groups", h.CreateGroup)
	groups.Post("/join", h.JoinGroup)
	groups.Post("/invitations/:id/accept", h.AcceptInvitation)
	groups.Post("/invitations/:id/decline", h.DeclineInvitation)
	groups.Get("/activity/actions", h.GetActivityActions)
	groups.Post("/:id/add-member", h.InviteMember)
	groups.Get("/:id/settings", h.GetSettings)
	groups.Put("/:id/settings", h.UpdateSettings)
	groups.Post("/:id/cleanup-moves", h.CleanupMoves)
	groups.Get("/:id/member-count", h.GetMemberCount)
	groups.Get("/:id/members", h.ListMembers)
	groups.Delete("/:id/members/:user_id", h.RemoveMember)
	groups.Get("/:id/activity", h.ListActivity)

	api := app.Group("/api")
	api.Get("/groups/:id/moves", h.ListMoves)
	api.Post("/groups/:id/moves", h.CreateMove)
	api.Put("/moves/:id", h.UpdateMove)
	api.Delete("/moves/:id", h.DeleteMove)

	votes := app.Group("/votes")
	votes.Post("/move/:id/vote", h.ToggleVote)
	votes.Get("/move/:id", h.GetMoveVotes)
	votes.Get("/group/:id", h.GetGroupVotes)

	friends := app.Group("/friends")
	friends.Post("/request", h.SendFriendRequest)
	friends.Get("/user/:id", h.ListFriends)
	friends.Get("/user/:id/requests", h.ListFriendRequests)
	friends.Post("/accept/:id", h.AcceptFriendRequest)
	friends.Delete("/remove/:id", h.RemoveFriend)
	friends.Get("/profile/:id", h.GetProfile)

	messages := app.Group("/messages")
	messages.Post("/send", h.SendMessage)
	messages.Get("/conversation/:user1/:user2", h.GetConversation)
	messages.Get("/user/:id/conversations", h.ListConversations)
	messages.Get("/ws/:user_id", h.MessagesWebSocketUpgrade, websocket.New(h.MessagesWebSocket))
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
