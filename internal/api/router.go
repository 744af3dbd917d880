package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/craftfolio-api/internal/auth"
	"github.com/craftfolio-api/internal/comments"
	"github.com/craftfolio-api/internal/posts"
	"github.com/craftfolio-api/internal/repository"
)

// Services bundles the services the router exposes
type Services struct {
	Auth     *auth.Service
	Posts    *posts.Service
	Comments *comments.Service
	Users    repository.UserRepository
}

// NewRouter creates and configures the Gin router
func NewRouter(services *Services, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(identifyMiddleware(services.Auth))

	// Handlers
	authHandler := NewAuthHandler(services.Auth, log)
	postHandler := NewPostHandler(services.Posts, log)
	commentHandler := NewCommentHandler(services.Comments, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	// API v1
	v1 := router.Group("/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.SignUp)
			authRoutes.POST("/signin", authHandler.SignIn)
			authRoutes.GET("/me", requireUser(), authHandler.Me)
		}

		postRoutes := v1.Group("/posts")
		{
			postRoutes.GET("", postHandler.List)
			postRoutes.GET("/:post_id", postHandler.Get)
			postRoutes.POST("", requireUser(), postHandler.Create)
			postRoutes.PUT("/:post_id", requireUser(), postHandler.Update)
			postRoutes.DELETE("/:post_id", requireUser(), postHandler.Delete)

			commentRoutes := postRoutes.Group("/:post_id/comments")
			{
				commentRoutes.GET("", commentHandler.Tree)
				commentRoutes.GET("/stream", commentHandler.Stream)
				commentRoutes.POST("", commentHandler.Create)
				commentRoutes.PUT("/:comment_id", commentHandler.Update)
				commentRoutes.DELETE("/:comment_id", commentHandler.Delete)
				commentRoutes.POST("/:comment_id/like", commentHandler.Like)
				commentRoutes.POST("/:comment_id/dislike", commentHandler.Dislike)

				replyRoutes := commentRoutes.Group("/:comment_id/replies")
				{
					replyRoutes.POST("", commentHandler.CreateReply)
					replyRoutes.PUT("/:reply_id", commentHandler.UpdateReply)
					replyRoutes.DELETE("/:reply_id", commentHandler.DeleteReply)
					replyRoutes.POST("/:reply_id/like", commentHandler.LikeReply)
					replyRoutes.POST("/:reply_id/dislike", commentHandler.DislikeReply)
				}
			}
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "craftfolio-api",
	})
}

// metricsHandler returns basic content metrics
func metricsHandler(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usersCount, _ := services.Users.Count(ctx)
		allPosts, _ := services.Posts.List(ctx)

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"users": usersCount,
				"posts": len(allPosts),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
