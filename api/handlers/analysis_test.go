package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

func newAnalysisRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalysisHandler(logger.NewTestLogger())

	r := gin.New()
	r.POST("/analysis/clonability", h.AnalyzeClonability)
	r.POST("/analysis/integrity", h.AnalyzeIntegrity)
	r.POST("/analysis/golden-thread", h.AnalyzeGoldenThread)
	r.POST("/analysis/audit", h.AnalyzeAudit)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalysisEndpointsRejectMissingText(t *testing.T) {
	r := newAnalysisRouter()
	paths := []string{
		"/analysis/clonability",
		"/analysis/integrity",
		"/analysis/golden-thread",
		"/analysis/audit",
	}

	for _, path := range paths {
		w := postJSON(t, r, path, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Message, "text")
	}
}

func TestAnalysisEndpointsRejectNonStringText(t *testing.T) {
	r := newAnalysisRouter()
	for _, body := range []string{`{"text": 123}`, `{"text": null}`, `{"text": ["a"]}`} {
		w := postJSON(t, r, "/analysis/integrity", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestAnalysisEndpointsRejectMalformedJSON(t *testing.T) {
	r := newAnalysisRouter()
	w := postJSON(t, r, "/analysis/clonability", `{"text": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeClonabilityEndpoint(t *testing.T) {
	r := newAnalysisRouter()
	w := postJSON(t, r, "/analysis/clonability", `{"text": "An original session note about this specific client."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "originality_score")
	assert.Contains(t, resp, "risk_level")
}

func TestAnalyzeGoldenThreadEndpoint(t *testing.T) {
	r := newAnalysisRouter()
	w := postJSON(t, r, "/analysis/golden-thread", `{"text": "Chief complaint: anxiety. Assessment: GAD. Plan: weekly therapy."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Partially Compliant", resp["golden_thread_compliance"])
}

func TestAnalyzeAuditEndpointEchoesDocumentID(t *testing.T) {
	r := newAnalysisRouter()
	w := postJSON(t, r, "/analysis/audit", `{"text": "Plan: continue treatment.", "documentId": "doc-42"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "doc-42", resp["document_id"])
	assert.Contains(t, resp, "overall_score")
}

func TestAnalyzeAuditEndpointRejectsNonStringDocumentID(t *testing.T) {
	r := newAnalysisRouter()
	w := postJSON(t, r, "/analysis/audit", `{"text": "note", "documentId": 7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeIntegrityEndpointEmptyStringIsValid(t *testing.T) {
	// An empty text is a legitimate request; it just scores poorly.
	r := newAnalysisRouter()
	w := postJSON(t, r, "/analysis/integrity", `{"text": ""}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "overall_score")
}
