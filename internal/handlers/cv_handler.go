package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-analyzer/internal/services"
	apperrors "cv-analyzer/pkg/errors"
)

type CVHandler struct {
	cvs      *services.CVService
	analysis *services.AnalysisService
}

func NewCVHandler(cvs *services.CVService, analysis *services.AnalysisService) *CVHandler {
	return &CVHandler{cvs: cvs, analysis: analysis}
}

// Upload accepts a CV file and returns its id.
// POST /api/v1/cv/upload
func (h *CVHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{
			Error:   apperrors.ErrValidation.Code,
			Message: "file is required",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.cvs.Upload(c.Request.Context(), fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type analyzeRequest struct {
	Provider      string `json:"provider"`
	PromptVersion string `json:"prompt_version"`
}

// Analyze queues an analysis job for an uploaded CV.
// POST /api/v1/cv/:cv_id/analyze
func (h *CVHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	// An empty body just means defaults for every field.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{
			Error:   apperrors.ErrValidation.Code,
			Message: err.Error(),
		})
		return
	}

	result, err := h.analysis.Request(c.Request.Context(), c.Param("cv_id"),
		req.Provider, req.PromptVersion)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Report returns the final analysis report. Report persistence is not wired
// up yet, so every lookup is a 404.
// GET /api/v1/cv/:cv_id/report
func (h *CVHandler) Report(c *gin.Context) {
	c.JSON(http.StatusNotFound, apperrors.ErrorResponse{
		Error:   apperrors.ErrNotFound.Code,
		Message: "Report not found",
	})
}
