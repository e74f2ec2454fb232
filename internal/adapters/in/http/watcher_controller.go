package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/offsettrade/visa-checker-bot/internal/config"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/in"
)

type WatcherController struct {
	useCase in.SlotWatcherUseCase
	cfg     *config.Config
}

func NewWatcherController(useCase in.SlotWatcherUseCase, cfg *config.Config) *WatcherController {
	return &WatcherController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *WatcherController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/status", c.status)
		api.POST("/watcher/start", c.startWatcher)
		api.POST("/watcher/stop", c.stopWatcher)
		api.PUT("/auth/token", c.rotateToken)
	}
}

func (c *WatcherController) status(ctx *gin.Context) {
	snapshot := c.useCase.Status()

	ctx.JSON(http.StatusOK, gin.H{
		"polling":      snapshot.Polling,
		"rescheduling": snapshot.Rescheduling,
		"configuration": gin.H{
			"fromDate":         c.cfg.Watcher.Window.FromString(),
			"toDate":           c.cfg.Watcher.Window.ToString(),
			"pollInterval":     c.cfg.Watcher.PollInterval.String(),
			"parallelAttempts": c.cfg.Watcher.ParallelAttempts,
			"maxRetries":       c.cfg.Watcher.MaxRetries,
			"maxTotalAttempts": c.cfg.Watcher.MaxTotalAttempts,
			"retrySameSlot":    c.cfg.Watcher.RetrySameSlot,
			"visaType":         c.cfg.Portal.VisaType,
			"visaClass":        c.cfg.Portal.VisaClass,
		},
	})
}

func (c *WatcherController) startWatcher(ctx *gin.Context) {
	if err := c.useCase.StartPolling(); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"polling": true})
}

func (c *WatcherController) stopWatcher(ctx *gin.Context) {
	c.useCase.StopPolling()

	ctx.JSON(http.StatusOK, gin.H{"polling": false})
}

type RotateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (c *WatcherController) rotateToken(ctx *gin.Context) {
	var req RotateTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.useCase.RotateToken(req.Token)

	ctx.JSON(http.StatusOK, gin.H{"rotated": true})
}

func (c *WatcherController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}
