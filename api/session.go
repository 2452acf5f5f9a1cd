package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-bot/service"
)

func GetSessionHandler(chatSvc *service.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := chatSvc.Session(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if session == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

func DeleteSessionHandler(chatSvc *service.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := chatSvc.ResetSession(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func HealthHandler(chatSvc *service.ChatService, knowledge *service.KnowledgeStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":     "ok",
			"categories": len(knowledge.Current().Categories()),
		}

		n, err := chatSvc.SessionCount(c.Request.Context())
		if err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["error"] = err.Error()
		} else {
			body["sessions"] = n
		}

		c.JSON(status, body)
	}
}
