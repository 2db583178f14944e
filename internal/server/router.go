package server

import (
	"embed"
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:embed web/index.html
var webFS embed.FS

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())
	pprof.Register(router)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	if s.conf.StaticDir != "" {
		router.Static("/static", s.conf.StaticDir)
	}

	router.GET("/", s.handleIndex)
	router.POST("/detect/", s.handleDetect)

	stats := router.Group("/stats")
	stats.GET("", s.handleGetStats)
	stats.GET("/summary", s.handleStatsSummary)
	stats.GET("/daily", s.handleDailyStats)
	stats.GET("/trend", s.handleStatsTrend)
	stats.GET("/schema", s.handleStatsSchema)

	return router
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
