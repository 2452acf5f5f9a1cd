package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-bot/model"
	"portfolio-bot/service"
)

type ListKnowledgeResponse struct {
	Source     string                   `json:"source"`
	LoadedAt   time.Time                `json:"loaded_at"`
	Typos      int                      `json:"typos"`
	Fallbacks  int                      `json:"fallbacks"`
	Categories []model.KnowledgeSummary `json:"categories"`
}

func ListKnowledgeHandler(knowledge *service.KnowledgeStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		kb := knowledge.Current()
		c.JSON(http.StatusOK, ListKnowledgeResponse{
			Source:     kb.Source(),
			LoadedAt:   kb.LoadedAt(),
			Typos:      kb.Normalizer().Len(),
			Fallbacks:  len(kb.Fallbacks()),
			Categories: kb.Summaries(),
		})
	}
}

func ReloadKnowledgeHandler(knowledge *service.KnowledgeStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		kb, err := knowledge.Reload()
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, model.ReloadResponse{
			Message:    "knowledge base reloaded",
			Categories: len(kb.Categories()),
			ReloadedAt: kb.LoadedAt(),
		})
	}
}

func ProjectsHandler(knowledge *service.KnowledgeStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects := knowledge.Current().Projects()
		if projects == nil {
			projects = []model.Project{}
		}
		c.JSON(http.StatusOK, projects)
	}
}
