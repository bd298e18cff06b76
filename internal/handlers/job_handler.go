package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-analyzer/internal/services"
)

type JobHandler struct {
	analysis *services.AnalysisService
}

func NewJobHandler(analysis *services.AnalysisService) *JobHandler {
	return &JobHandler{analysis: analysis}
}

// Status returns the job record with its timeline.
// GET /api/v1/jobs/:job_id
func (h *JobHandler) Status(c *gin.Context) {
	result, err := h.analysis.Status(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
