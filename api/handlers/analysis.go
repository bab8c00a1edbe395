package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AliceDavies2025/clincerta/internal/analysis"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

// AnalysisHandler serves the synchronous text analysis endpoints. They
// operate on raw text supplied by the caller and never touch the
// document pipeline.
type AnalysisHandler struct {
	logger       logger.Logger
	goldenThread analysis.GoldenThreadPolicy
}

func NewAnalysisHandler(log logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		logger:       log,
		goldenThread: analysis.DefaultGoldenThreadPolicy(),
	}
}

// WithGoldenThreadPolicy overrides the compliance thresholds.
func (h *AnalysisHandler) WithGoldenThreadPolicy(p analysis.GoldenThreadPolicy) *AnalysisHandler {
	h.goldenThread = p
	return h
}

// requireText enforces that the request body is a JSON object whose
// "text" member is a string. Anything else is rejected before any
// analysis runs.
func (h *AnalysisHandler) requireText(c *gin.Context) (string, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return "", false
	}

	raw, present := body["text"]
	if !present {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing required field: text",
		})
		return "", false
	}
	text, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Field text must be a string",
		})
		return "", false
	}
	return text, true
}

// AnalyzeClonability scores a text for similarity against the reference
// templates.
func (h *AnalysisHandler) AnalyzeClonability(c *gin.Context) {
	text, ok := h.requireText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysis.AnalyzeClonability(text))
}

// AnalyzeIntegrity scores documentation completeness.
func (h *AnalysisHandler) AnalyzeIntegrity(c *gin.Context) {
	text, ok := h.requireText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysis.AnalyzeIntegrity(text))
}

// AnalyzeGoldenThread evaluates clinical narrative continuity.
func (h *AnalysisHandler) AnalyzeGoldenThread(c *gin.Context) {
	text, ok := h.requireText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysis.AnalyzeGoldenThread(text, h.goldenThread))
}

// AnalyzeAudit runs the audit scoring pass. An optional documentId
// string is echoed into the report.
func (h *AnalysisHandler) AnalyzeAudit(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	raw, present := body["text"]
	if !present {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing required field: text"})
		return
	}
	text, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Field text must be a string"})
		return
	}

	documentID := ""
	if raw, present := body["documentId"]; present {
		if id, ok := raw.(string); ok {
			documentID = id
		} else {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Field documentId must be a string"})
			return
		}
	}

	c.JSON(http.StatusOK, analysis.AnalyzeAudit(text, documentID))
}
