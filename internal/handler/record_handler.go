package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-marks/internal/dto"
	"github.com/noah-isme/sma-marks/internal/models"
	"github.com/noah-isme/sma-marks/internal/service"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
	"github.com/noah-isme/sma-marks/pkg/response"
)

type recordStore interface {
	Add(ctx context.Context, marks models.StudentMarks) (models.StudentRecord, error)
	Delete(ctx context.Context, sel models.Selector) (int, error)
	Update(ctx context.Context, sel models.Selector, field models.UpdatableField, value string) (models.StudentRecord, error)
	Reload(ctx context.Context) (*models.LoadReport, error)
}

type recordViews interface {
	Overview(ctx context.Context) (*models.RecordTable, error)
	Lookup(ctx context.Context, query string) (*models.RecordTable, error)
	Extreme(ctx context.Context, highest bool) (*models.RecordTable, error)
	Sorted(ctx context.Context, ascending bool) (*models.RecordTable, error)
	Invalidate(ctx context.Context) error
}

type recordExporter interface {
	Render(ctx context.Context, format models.ExportFormat, order models.SortOrder) (*models.ExportFile, error)
}

// RecordHandler exposes the student record endpoints.
type RecordHandler struct {
	store   recordStore
	views   recordViews
	exports recordExporter
}

// NewRecordHandler constructs RecordHandler.
func NewRecordHandler(store recordStore, views recordViews, exports recordExporter) *RecordHandler {
	return &RecordHandler{store: store, views: views, exports: exports}
}

// Overview godoc
// @Summary List all student records with the class summary
// @Tags Records
// @Produce json
// @Success 200 {object} response.Envelope{data=models.RecordTable}
// @Router /records [get]
func (h *RecordHandler) Overview(c *gin.Context) {
	table, err := h.views.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, table)
}

// Lookup godoc
// @Summary Find one student by code or name fragment
// @Tags Records
// @Produce json
// @Param q query string true "Student code or part of a name"
// @Success 200 {object} response.Envelope{data=models.RecordTable}
// @Failure 404 {object} response.Envelope
// @Router /records/lookup [get]
func (h *RecordHandler) Lookup(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "query parameter q is required"))
		return
	}
	table, err := h.views.Lookup(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, table)
}

// Sorted godoc
// @Summary List records ordered by total mark
// @Tags Records
// @Produce json
// @Param order query string false "asc (default) or desc"
// @Success 200 {object} response.Envelope{data=models.RecordTable}
// @Router /records/sorted [get]
func (h *RecordHandler) Sorted(c *gin.Context) {
	order, ok := models.ParseSortOrder(c.DefaultQuery("order", "asc"))
	if !ok || order == models.OrderNone {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "order must be asc or desc"))
		return
	}
	table, err := h.views.Sorted(c.Request.Context(), order == models.OrderAscending)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, table)
}

// Extreme godoc
// @Summary Show the highest or lowest scoring student
// @Tags Records
// @Produce json
// @Param which query string false "highest (default) or lowest"
// @Success 200 {object} response.Envelope{data=models.RecordTable}
// @Failure 404 {object} response.Envelope
// @Router /records/extreme [get]
func (h *RecordHandler) Extreme(c *gin.Context) {
	var highest bool
	switch strings.ToLower(c.DefaultQuery("which", "highest")) {
	case "highest", "top", "max":
		highest = true
	case "lowest", "bottom", "min":
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "which must be highest or lowest"))
		return
	}
	table, err := h.views.Extreme(c.Request.Context(), highest)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, table)
}

// Export godoc
// @Summary Download the records as CSV or PDF
// @Tags Records
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param order query string false "asc or desc; storage order when omitted"
// @Success 200 {file} file
// @Router /records/export [get]
func (h *RecordHandler) Export(c *gin.Context) {
	format, err := service.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	order, ok := models.ParseSortOrder(c.Query("order"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "order must be asc or desc"))
		return
	}
	file, err := h.exports.Render(c.Request.Context(), format, order)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// Create godoc
// @Summary Add a student record
// @Tags Records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateRecordRequest true "Student marks"
// @Success 201 {object} response.Envelope{data=models.StudentRecord}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /records [post]
func (h *RecordHandler) Create(c *gin.Context) {
	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.store.Add(c.Request.Context(), req.Marks())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Change one field of a student record
// @Tags Records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param selector path string true "Student code or exact name"
// @Param payload body dto.UpdateRecordRequest true "Field and new value"
// @Success 200 {object} response.Envelope{data=models.RecordTable}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/{selector} [patch]
func (h *RecordHandler) Update(c *gin.Context) {
	var req dto.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	field, err := service.ParseField(req.Field)
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.store.Update(c.Request.Context(), models.ParseSelector(c.Param("selector")), field, req.RawValue())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, &models.RecordTable{
		Title:   fmt.Sprintf("Updated Record for %s", record.Name),
		Records: []models.StudentRecord{record},
	})
}

// Delete godoc
// @Summary Delete every record matching a code or exact name
// @Tags Records
// @Produce json
// @Security BearerAuth
// @Param selector path string true "Student code or exact name"
// @Success 200 {object} response.Envelope{data=dto.DeleteRecordResponse}
// @Failure 404 {object} response.Envelope
// @Router /records/{selector} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	sel := models.ParseSelector(c.Param("selector"))
	removed, err := h.store.Delete(c.Request.Context(), sel)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeleteRecordResponse{Selector: sel.Raw, Removed: removed})
}

// Reload godoc
// @Summary Re-read the record store from its backend
// @Tags Records
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.LoadReport}
// @Router /records/reload [post]
func (h *RecordHandler) Reload(c *gin.Context) {
	report, err := h.store.Reload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"cache_invalidated": true}
	if err := h.views.Invalidate(c.Request.Context()); err != nil {
		meta["cache_invalidated"] = false
	}
	response.JSON(c, http.StatusOK, report, meta)
}
