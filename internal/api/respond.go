package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// envelope is the success body shape for user routes. Drone routes return
// raw payloads instead.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func respondInternal(c *gin.Context) {
	respondError(c, http.StatusInternalServerError, "Something went wrong")
}
