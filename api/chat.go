package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"portfolio-bot/model"
	"portfolio-bot/service"
)

const apologyReply = "Oops! Something went wrong. Please try again!"

// MaxChatBodyBytes caps a /chat request body; larger bodies fail to bind.
const MaxChatBodyBytes = 16 << 10

func ChatHandler(chatSvc *service.ChatService, delay Delay) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxChatBodyBytes)

		var req model.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			requestLogger(c).Warn().Err(err).Msg("bad chat request")
			c.JSON(http.StatusBadRequest, model.ChatResponse{Reply: apologyReply})
			return
		}

		resp, err := chatSvc.HandleMessage(c.Request.Context(), req)
		if err != nil {
			requestLogger(c).Error().Err(err).Msg("chat turn failed")
			c.JSON(http.StatusInternalServerError, model.ChatResponse{Reply: apologyReply})
			return
		}

		if resp.Type != model.DecisionEmpty {
			if err := delay.Wait(c.Request.Context()); err != nil {
				// client went away; nobody is reading the reply
				c.Status(http.StatusRequestTimeout)
				return
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

// NewSessionHandler issues a fresh session id for chat widgets.
func NewSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessionId": uuid.NewString()})
	}
}
