package config

import (
	http "github.com/ferdian3456/threadit/internal/delivery/http"
	"github.com/ferdian3456/threadit/internal/delivery/http/middleware"
	"github.com/ferdian3456/threadit/internal/delivery/http/route"
	"github.com/ferdian3456/threadit/internal/exception"
	tracemiddleware "github.com/ferdian3456/threadit/internal/middleware"
	"github.com/ferdian3456/threadit/internal/repository"
	"github.com/ferdian3456/threadit/internal/usecase"
	"github.com/minio/minio-go/v7"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Router  *fiber.App
	DB      *pgxpool.Pool
	DBCache *redis.Client
	Log     *zap.Logger
	Config  *koanf.Koanf
	MinIO   *minio.Client
}

// Server installs the middleware chain and wires repositories, usecases and
// controllers onto the router.
func Server(config *ServerConfig) {
	config.Router.Use(exception.Recovery(config.Log))
	config.Router.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/api/health"
	})))
	config.Router.Use(tracemiddleware.TraceLoggerMiddleware(config.Log))
	config.Router.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	config.Router.Use(middleware.SetupCORS(config.Config.String("CORS_ALLOW_ORIGINS")))
	config.Router.Use(middleware.SetupRateLimiter(config.Log, config.Config.Int("RATE_LIMIT_MAX")))

	userRepository := repository.NewUserRepository(config.Log, config.DB, config.DBCache)
	groupRepository := repository.NewGroupRepository(config.Log, config.DB, config.MinIO)
	postRepository := repository.NewPostRepository(config.Log, config.DB)
	upvoteRepository := repository.NewUpvoteRepository(config.Log, config.DB)
	commentRepository := repository.NewCommentRepository(config.Log, config.DB, config.DBCache)

	userUsecase := usecase.NewUserUsecase(userRepository, config.Log, config.Config)
	groupUsecase := usecase.NewGroupUsecase(groupRepository, config.DB, config.Log, config.Config)
	postUsecase := usecase.NewPostUsecase(postRepository, groupRepository, commentRepository, config.Log, config.Config)
	upvoteUsecase := usecase.NewUpvoteUsecase(upvoteRepository, postRepository, config.Log)
	commentUsecase := usecase.NewCommentUsecase(commentRepository, postRepository, config.Log, config.Config)

	userController := http.NewUserController(userUsecase, config.Log)
	groupController := http.NewGroupController(groupUsecase, config.Log)
	postController := http.NewPostController(postUsecase, config.Log, config.Config)
	upvoteController := http.NewUpvoteController(upvoteUsecase, config.Log)
	commentController := http.NewCommentController(commentUsecase, config.Log)

	authMiddleware := middleware.NewAuthMiddleware(config.Log, userUsecase)

	routeConfig := route.RouteConfig{
		App:               config.Router,
		AuthMiddleware:    authMiddleware,
		AuthRateLimiter:   middleware.SetupAuthRateLimiter(config.Log, config.Config.Int("AUTH_RATE_LIMIT_MAX")),
		UserController:    userController,
		GroupController:   groupController,
		PostController:    postController,
		UpvoteController:  upvoteController,
		CommentController: commentController,
	}

	routeConfig.SetupRoute()
}
