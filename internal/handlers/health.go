package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

func Root(c *gin.Context) {
	c.JSON(200, gin.H{"success": true, "msg": "Hello from CampusHub"})
}

func HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"success":   true,
		"msg":       "CampusHub is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
