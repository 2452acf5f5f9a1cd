package route

import (
	"github.com/gin-gonic/gin"

	"portfolio-bot/api"
	"portfolio-bot/service"
)

type Deps struct {
	Chat       *service.ChatService
	Contact    *service.ContactService
	Knowledge  *service.KnowledgeStore
	Delay      api.Delay
	Limiter    *api.RateLimiter
	AdminToken string
}

func Register(r *gin.Engine, d Deps) {
	r.Use(api.RequestLogger())

	r.GET("/health", api.HealthHandler(d.Chat, d.Knowledge))
	r.GET("/projects", api.ProjectsHandler(d.Knowledge))

	chatGroup := r.Group("/chat")
	{
		chatGroup.POST("", api.RateLimit(d.Limiter), api.ChatHandler(d.Chat, d.Delay))
		chatGroup.GET("/session", api.NewSessionHandler())
	}

	if d.Contact != nil {
		r.POST("/contact", api.RateLimit(d.Limiter), api.ContactHandler(d.Contact))
	}

	adminGroup := r.Group("/admin", api.RequireAdmin(d.AdminToken))
	{
		adminGroup.GET("/knowledge", api.ListKnowledgeHandler(d.Knowledge))
		adminGroup.POST("/knowledge/reload", api.ReloadKnowledgeHandler(d.Knowledge))
		adminGroup.GET("/sessions/:id", api.GetSessionHandler(d.Chat))
		adminGroup.DELETE("/sessions/:id", api.DeleteSessionHandler(d.Chat))
		if d.Contact != nil {
			adminGroup.GET("/contact-messages", api.ListContactHandler(d.Contact))
		}
	}
}
