package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AliceDavies2025/clincerta/internal/service/document"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

type Handlers struct {
	Document *DocumentHandler
	Analysis *AnalysisHandler
}

func NewHandlers(
	documentService document.DocumentProcessor,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(documentService, log),
		Analysis: NewAnalysisHandler(log),
	}
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
