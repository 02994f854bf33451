package server

import "github.com/gin-gonic/gin"

// apiResponse is the uniform success envelope.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, apiResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}
