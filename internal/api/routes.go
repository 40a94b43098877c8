package api

import (
	"net/http"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	profileService service.ProfileService,
	innermostService service.InnermostService,
	weekService service.WeekService,
	statsService service.StatsService,
) {

	authHandler := NewAuthHandler(authService)
	profileHandler := NewProfileHandler(profileService)
	innermostHandler := NewInnermostHandler(innermostService)
	weekHandler := NewWeekHandler(weekService)
	statsHandler := NewStatsHandler(statsService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Profile ---
		meGroup := protected.Group("/me")
		{
			meGroup.GET("", profileHandler.GetMe)
			meGroup.POST("/photo/upload-url", profileHandler.RequestPhotoUploadURL)
			meGroup.POST("/photo/confirm", profileHandler.ConfirmPhoto)
			meGroup.GET("/photo", profileHandler.GetPhotoURL)
		}

		// --- Innermost lifecycle ---
		innermostGroup := protected.Group("/innermosts")
		{
			innermostGroup.POST("", innermostHandler.Invite)
			innermostGroup.GET("", innermostHandler.List)
			innermostGroup.POST("/:id/accept", innermostHandler.Accept)
			innermostGroup.DELETE("/:id", innermostHandler.End)

			// --- Weekly workflow ---
			// GET /weeks (no number) returns the current week
			innermostGroup.GET("/:id/weeks", weekHandler.GetCurrent)
			innermostGroup.GET("/:id/weeks/:week", weekHandler.GetWeek)
			innermostGroup.POST("/:id/weeks/:week/wishes", weekHandler.SubmitWishes)
			innermostGroup.PUT("/:id/weeks/:week/wishes", weekHandler.ReviseWishes)
			innermostGroup.POST("/:id/weeks/:week/willing", weekHandler.SubmitWilling)
			innermostGroup.PUT("/:id/weeks/:week/willing", weekHandler.ReviseWilling)
			innermostGroup.POST("/:id/weeks/:week/guess", weekHandler.SubmitGuess)
			innermostGroup.GET("/:id/weeks/:week/score", weekHandler.GetScore)
		}

		// --- Statistics ---
		protected.GET("/stats", statsHandler.GetStats)
	}
}
