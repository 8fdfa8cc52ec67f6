package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"cardindex/server/middleware"
)

// SendJSONResponse отправляет успешный JSON ответ
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendJSONError отправляет JSON ошибку и логирует ее
func SendJSONError(c *gin.Context, statusCode int, message string) {
	slog.Error("http error",
		"error", message,
		"status_code", statusCode,
		"request_id", middleware.GetRequestIDFromGin(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}
