package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio-bot/model"
	"portfolio-bot/service"
)

func ContactHandler(contactSvc *service.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, model.ContactResponse{Error: "Missing fields"})
			return
		}

		msg, err := contactSvc.Submit(c.Request.Context(), req)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, model.ContactResponse{OK: true, ID: msg.ID, Message: "Email sent"})
		case errors.Is(err, service.ErrInvalidContact):
			c.JSON(http.StatusBadRequest, model.ContactResponse{Error: "Missing fields"})
		case errors.Is(err, service.ErrNotifierNotConfigured):
			c.JSON(http.StatusInternalServerError, model.ContactResponse{ID: msg.ID, Error: "Server not configured"})
		case errors.Is(err, service.ErrDeliveryFailed):
			c.JSON(http.StatusBadGateway, model.ContactResponse{ID: msg.ID, Error: "Failed to send message"})
		default:
			requestLogger(c).Error().Err(err).Msg("contact submission failed")
			c.JSON(http.StatusInternalServerError, model.ContactResponse{Error: "Internal server error"})
		}
	}
}

func ListContactHandler(contactSvc *service.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		msgs, err := contactSvc.Recent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if msgs == nil {
			msgs = []*model.ContactMessage{}
		}

		c.JSON(http.StatusOK, gin.H{"data": msgs, "total": len(msgs)})
	}
}
