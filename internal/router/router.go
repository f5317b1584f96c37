package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Setup registers the liveness routes. Free-tier hosts suspend the process
// after a quiet period; pinging these keeps both bots alive. No business
// data passes through here.
func Setup(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Boty Telegram działają! 🤖")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "bots": "running"})
	})
}
