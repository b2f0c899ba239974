package route

import (
	"github.com/ferdian3456/threadit/internal/delivery/http"
	"github.com/ferdian3456/threadit/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App               *fiber.App
	AuthMiddleware    *middleware.AuthMiddleware
	AuthRateLimiter   fiber.Handler
	UserController    *http.UserController
	GroupController   *http.GroupController
	PostController    *http.PostController
	UpvoteController  *http.UpvoteController
	CommentController *http.CommentController
}

func (c *RouteConfig) SetupRoute() {
	api := c.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authGroup := api.Group("/auth", c.AuthRateLimiter)
	authGroup.Post("/signup/start", c.UserController.StartSignup)
	authGroup.Post("/signup/otp", c.UserController.VerifyOtp)
	authGroup.Post("/signup/username", c.UserController.VerifyUsername)
	authGroup.Post("/signup/password", c.UserController.VerifyPassword)
	authGroup.Get("/signup/status/:sessionId", c.UserController.GetSignupStatus)
	authGroup.Post("/login", c.UserController.Login)

	userGroup := api.Group("/users", c.AuthMiddleware.ProtectedRoute())
	userGroup.Get("/me", c.UserController.GetUserInfo)
	userGroup.Post("/logout", c.UserController.Logout)

	groupGroup := api.Group("/groups", c.AuthMiddleware.ProtectedRoute())
	groupGroup.Get("/", c.GroupController.SearchGroups)
	groupGroup.Post("/", c.GroupController.CreateGroup)

	postGroup := api.Group("/posts", c.AuthMiddleware.ProtectedRoute())
	postGroup.Get("/", c.PostController.GetPosts)
	postGroup.Post("/", c.PostController.CreatePost)
	postGroup.Get("/:postId", c.PostController.GetPost)
	postGroup.Delete("/:postId", c.PostController.DeletePost)

	postGroup.Get("/:postId/upvotes", c.UpvoteController.GetUpvotes)
	postGroup.Put("/:postId/upvotes", c.UpvoteController.Vote)
	postGroup.Delete("/:postId/upvotes", c.UpvoteController.RemoveVote)

	postGroup.Get("/:postId/comments", c.CommentController.GetCommentThread)
	postGroup.Post("/:postId/comments", c.CommentController.CreateComment)
	postGroup.Delete("/:postId/comments/:commentId", c.CommentController.DeleteComment)
}
