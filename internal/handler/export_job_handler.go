package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-marks/internal/dto"
	"github.com/noah-isme/sma-marks/internal/models"
	"github.com/noah-isme/sma-marks/internal/service"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
	"github.com/noah-isme/sma-marks/pkg/response"
)

type exportJobs interface {
	Submit(format models.ExportFormat, order models.SortOrder) (*models.ExportJob, error)
	Get(id string) (*models.ExportJob, error)
	Open(id string) (*os.File, *models.ExportJob, error)
	Files() ([]string, error)
}

// ExportJobHandler exposes background export endpoints.
type ExportJobHandler struct {
	jobs exportJobs
}

// NewExportJobHandler constructs ExportJobHandler.
func NewExportJobHandler(jobs exportJobs) *ExportJobHandler {
	return &ExportJobHandler{jobs: jobs}
}

// Submit godoc
// @Summary Queue an export to be stored under EXPORTS_DIR
// @Tags Exports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateExportJobRequest true "Export format and order"
// @Success 202 {object} response.Envelope{data=models.ExportJob}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /records/exports [post]
func (h *ExportJobHandler) Submit(c *gin.Context) {
	var req dto.CreateExportJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	format, err := service.ParseFormat(req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	order, ok := models.ParseSortOrder(req.Order)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "order must be asc or desc"))
		return
	}
	job, err := h.jobs.Submit(format, order)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// Status godoc
// @Summary Get the state of a queued export
// @Tags Exports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope{data=models.ExportJob}
// @Failure 404 {object} response.Envelope
// @Router /records/exports/{id} [get]
func (h *ExportJobHandler) Status(c *gin.Context) {
	job, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Download godoc
// @Summary Download the file of a finished export
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Export job ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /records/exports/{id}/download [get]
func (h *ExportJobHandler) Download(c *gin.Context) {
	file, job, err := h.jobs.Open(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export file"))
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), job.Format.ContentType(), file, map[string]string{
		"Content-Disposition": "attachment; filename=\"" + job.Filename + "\"",
	})
}

// List godoc
// @Summary List exports stored on disk
// @Tags Exports
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.ExportFilesResponse}
// @Router /records/exports [get]
func (h *ExportJobHandler) List(c *gin.Context) {
	files, err := h.jobs.Files()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ExportFilesResponse{Files: files})
}
