package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewHealthRouter は稼働確認用のHTTPルーターを作る
func NewHealthRouter(deps *Deps) *gin.Engine {
	startedAt := time.Now()

	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"uptime":            time.Since(startedAt).String(),
			"running_giveaways": len(deps.Cache.AllRunningGiveaways()),
			"calendar_monitors": len(deps.Cache.AllCalendarMonitors()),
		})
	})
	return r
}
