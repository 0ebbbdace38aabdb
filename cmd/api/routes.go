package main

import (
	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/middleware"
)

func setupRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(api.logger, api.production),
		middleware.RequestID(),
		middleware.Logger(api.logger),
		middleware.SecurityHeaders(),
		middleware.CORS(api.allowedOrigins),
	)

	// Health checks
	router.GET("/health", api.healthCheck)
	router.GET("/ready", api.readinessCheck)

	v1 := router.Group("/api")
	v1.Use(middleware.Auth(api.verifier))
	if api.limiter != nil {
		v1.Use(middleware.RateLimit(api.limiter))
	}
	{
		// Content
		v1.POST("/transcript", api.getTranscript)
		v1.POST("/notes", api.generateNotes)
		v1.POST("/mindmap", api.generateMindmap)
		v1.POST("/flashcards", api.generateFlashcards)

		// History
		v1.GET("/history", api.getHistory)
		v1.GET("/history/stats", api.getHistoryStats)

		// LLM administration
		v1.GET("/admin/llm", api.getCurrentLLMProvider)
		v1.POST("/admin/llm", api.changeLLMProvider)
		v1.GET("/admin/llm/all", api.getAllLLMProviders)
		v1.POST("/admin/llm/test", api.testLLMProvider)
	}

	router.NoRoute(api.notFound)

	return router
}
