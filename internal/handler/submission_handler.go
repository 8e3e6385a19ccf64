package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assignment-helper-api/internal/dto"
	"github.com/noah-isme/assignment-helper-api/internal/models"
	"github.com/noah-isme/assignment-helper-api/internal/service"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
	"github.com/noah-isme/assignment-helper-api/pkg/response"
)

// multipartOverheadBytes allows for boundaries and headers around the file part.
const multipartOverheadBytes = 1 << 20

type submissionService interface {
	Upload(ctx context.Context, account *models.Account, file service.FileUpload) (*dto.UploadResponse, error)
	GetAnalysis(ctx context.Context, accountID, analysisID string) (*models.AnalysisRecord, error)
	ListSubmissions(ctx context.Context, accountID string) ([]models.SubmissionSummary, error)
	MaxUploadBytes() int64
}

type exportService interface {
	Render(ctx context.Context, accountID, analysisID string, format service.ExportFormat) (*service.ExportResult, error)
}

// SubmissionHandler serves uploads, stored analyses and their exports.
type SubmissionHandler struct {
	service submissionService
	exports exportService
}

// NewSubmissionHandler constructs a SubmissionHandler.
func NewSubmissionHandler(svc submissionService, exports exportService) *SubmissionHandler {
	return &SubmissionHandler{service: svc, exports: exports}
}

// Upload godoc
// @Summary Upload an assignment for analysis
// @Description Accepts pdf, docx or txt and returns once the analysis is stored
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Assignment document"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /upload [post]
func (h *SubmissionHandler) Upload(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxUploadBytes()+multipartOverheadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "file exceeds upload limit"))
			return
		}
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrUnreadableFile, ""))
		return
	}
	defer file.Close() //nolint:errcheck

	// one byte past the limit is enough for the service to reject the upload
	content, err := io.ReadAll(io.LimitReader(file, h.service.MaxUploadBytes()+1))
	if err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrUnreadableFile, ""))
		return
	}

	res, err := h.service.Upload(c.Request.Context(), account, service.FileUpload{Filename: header.Filename, Content: content})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// GetAnalysis godoc
// @Summary Fetch a stored analysis
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Analysis ID"
// @Success 200 {object} models.AnalysisRecord
// @Failure 404 {object} response.ErrorBody
// @Router /analysis/{id} [get]
func (h *SubmissionHandler) GetAnalysis(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.service.GetAnalysis(c.Request.Context(), account.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record)
}

// Export godoc
// @Summary Download an analysis report
// @Tags Submissions
// @Produce application/pdf
// @Produce text/csv
// @Security BearerAuth
// @Param id path string true "Analysis ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /analysis/{id}/export [get]
func (h *SubmissionHandler) Export(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.exports.Render(c.Request.Context(), account.ID, c.Param("id"), service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, res.Filename, res.ContentType, res.Data)
}

// List godoc
// @Summary List the caller's submissions
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SubmissionSummary
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.service.ListSubmissions(c.Request.Context(), account.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []models.SubmissionSummary{}
	}

	response.JSON(c, http.StatusOK, items)
}
