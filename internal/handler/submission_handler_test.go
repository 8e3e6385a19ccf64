package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assignment-helper-api/internal/dto"
	"github.com/noah-isme/assignment-helper-api/internal/middleware"
	"github.com/noah-isme/assignment-helper-api/internal/models"
	"github.com/noah-isme/assignment-helper-api/internal/service"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
)

type submissionServiceMock struct {
	maxBytes   int64
	uploaded   service.FileUpload
	uploadErr  error
	records    map[string]*models.AnalysisRecord
	summaries  []models.SubmissionSummary
	lastExport service.ExportFormat
}

func (m *submissionServiceMock) Upload(ctx context.Context, account *models.Account, file service.FileUpload) (*dto.UploadResponse, error) {
	m.uploaded = file
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if int64(len(file.Content)) > m.maxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file too large")
	}
	return &dto.UploadResponse{JobID: "an-1", AnalysisID: "an-1", AssignmentID: "sub-1", Status: "completed"}, nil
}

func (m *submissionServiceMock) GetAnalysis(ctx context.Context, accountID, analysisID string) (*models.AnalysisRecord, error) {
	rec, ok := m.records[accountID+"/"+analysisID]
	if !ok {
		return nil, appErrors.WrapAs(sql.ErrNoRows, appErrors.ErrNotFound, "Analysis not found")
	}
	return rec, nil
}

func (m *submissionServiceMock) ListSubmissions(ctx context.Context, accountID string) ([]models.SubmissionSummary, error) {
	return m.summaries, nil
}

func (m *submissionServiceMock) MaxUploadBytes() int64 {
	return m.maxBytes
}

func (m *submissionServiceMock) Render(ctx context.Context, accountID, analysisID string, format service.ExportFormat) (*service.ExportResult, error) {
	m.lastExport = format
	if format == "xml" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}
	return &service.ExportResult{Filename: "analysis-" + analysisID + ".csv", ContentType: "text/csv", Data: []byte("field,value\n")}, nil
}

func authedContext(w *httptest.ResponseRecorder, req *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(middleware.ContextAccountKey, &models.Account{ID: "acc-1", Email: "a@b.com"})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "acc-1", Role: models.RoleStudent})
	return c
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSubmissionHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &submissionServiceMock{maxBytes: 1024}
	handler := NewSubmissionHandler(svc, svc)
	w := httptest.NewRecorder()
	c := authedContext(w, multipartRequest(t, "file", "essay.txt", []byte("hello world")))

	handler.Upload(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "essay.txt", svc.uploaded.Filename)
	assert.Equal(t, "hello world", string(svc.uploaded.Content))
	var res dto.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "completed", res.Status)
}

func TestSubmissionHandlerUploadMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &submissionServiceMock{maxBytes: 1024}
	handler := NewSubmissionHandler(svc, svc)
	w := httptest.NewRecorder()
	c := authedContext(w, multipartRequest(t, "document", "essay.txt", []byte("hello")))

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandlerUploadStopsReadingPastLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &submissionServiceMock{maxBytes: 4}
	handler := NewSubmissionHandler(svc, svc)
	w := httptest.NewRecorder()
	c := authedContext(w, multipartRequest(t, "file", "essay.txt", []byte("far too long")))

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, svc.uploaded.Content, 5)
}

func TestSubmissionHandlerUploadRejectsOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &submissionServiceMock{maxBytes: 4}
	handler := NewSubmissionHandler(svc, svc)
	w := httptest.NewRecorder()
	c := authedContext(w, multipartRequest(t, "file", "essay.txt", bytes.Repeat([]byte("a"), multipartOverheadBytes+64)))

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.uploaded.Content)
	assert.Empty(t, svc.uploaded.Filename)
}

func TestSubmissionHandlerGetAnalysis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &submissionServiceMock{records: map[string]*models.AnalysisRecord{
		"acc-1/an-1": {ID: "an-1", AssignmentID: "sub-1", PlagiarismScore: 12},
	}}
	handler := NewSubmissionHandler(svc, svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/analysis/an-1", nil)
	c := authedContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "an-1"}}
	handler.GetAnalysis(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"assignment_id":"sub-1"`)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/analysis/an-2", nil)
	c = authedContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "an-2"}}
	handler.GetAnalysis(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Analysis not found")
}

func TestSubmissionHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &submissionServiceMock{}
	handler := NewSubmissionHandler(svc, svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/analysis/an-1/export?format=csv", nil)
	c := authedContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "an-1"}}

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormat("csv"), svc.lastExport)
	assert.Equal(t, `attachment; filename="analysis-an-1.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "field,value\n", w.Body.String())
}

func TestSubmissionHandlerExportRejectsFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &submissionServiceMock{}
	handler := NewSubmissionHandler(svc, svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/analysis/an-1/export?format=xml", nil)
	c := authedContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "an-1"}}

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandlerListReturnsEmptyArray(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &submissionServiceMock{}
	handler := NewSubmissionHandler(svc, svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/submissions", nil)
	c := authedContext(w, req)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
