package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mingdom/folio/internal/app"
	"github.com/mingdom/folio/internal/repository"
	"go.uber.org/zap"
)

type ApiHandler struct {
	PortfolioHandler *app.PortfolioHandler
	GptRepository    repository.GptRepository
	Logger           *zap.SugaredLogger

	// The loaded snapshot is replaced wholesale on each upload; the
	// lock only guards the pointer swap.
	mu       sync.RWMutex
	snapshot *app.PortfolioSnapshot
}

func (m *ApiHandler) StartApi(port int) error {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to folio"})
	})
	router.POST("/portfolio", m.loadPortfolio)
	router.GET("/portfolio/summary", m.portfolioSummary)
	router.GET("/portfolio/groups", m.portfolioGroups)
	router.POST("/simulate", m.simulate)
	router.POST("/chat", m.chat)

	return router.Run(fmt.Sprintf(":%d", port))
}

func (m *ApiHandler) setSnapshot(s *app.PortfolioSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = s
}

func (m *ApiHandler) getSnapshot() *app.PortfolioSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func returnErrorJson(err error, c *gin.Context) {
	zap.S().Warn(err.Error())
	c.AbortWithStatusJSON(500, gin.H{
		"error": err.Error(),
	})
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	zap.S().Warn(err.Error())
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m *ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	requestID := uuid.New()
	start := time.Now()

	ctx.Next()

	m.Logger.Infow("request",
		"id", requestID,
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"elapsedMs", time.Since(start).Milliseconds(),
	)
}
