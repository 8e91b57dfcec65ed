package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

type fakeRecordStore struct {
	added      models.StudentMarks
	addErr     error
	deleted    models.Selector
	deleteN    int
	deleteErr  error
	updateSel  models.Selector
	updateFld  models.UpdatableField
	updateVal  string
	updateRec  models.StudentRecord
	updateErr  error
	reloadErr  error
	reloadHits int
}

func (f *fakeRecordStore) Add(_ context.Context, marks models.StudentMarks) (models.StudentRecord, error) {
	f.added = marks
	if f.addErr != nil {
		return models.StudentRecord{}, f.addErr
	}
	return models.StudentRecord{StudentMarks: marks, TotalMark: marks.CW1 + marks.CW2 + marks.CW3 + marks.Exam}, nil
}

func (f *fakeRecordStore) Delete(_ context.Context, sel models.Selector) (int, error) {
	f.deleted = sel
	return f.deleteN, f.deleteErr
}

func (f *fakeRecordStore) Update(_ context.Context, sel models.Selector, field models.UpdatableField, value string) (models.StudentRecord, error) {
	f.updateSel, f.updateFld, f.updateVal = sel, field, value
	return f.updateRec, f.updateErr
}

func (f *fakeRecordStore) Reload(context.Context) (*models.LoadReport, error) {
	f.reloadHits++
	if f.reloadErr != nil {
		return nil, f.reloadErr
	}
	return &models.LoadReport{Source: "studentMarks.txt", Loaded: 2}, nil
}

type fakeRecordViews struct {
	table       *models.RecordTable
	err         error
	lastQuery   string
	lastAsc     *bool
	lastHighest *bool
	invalidated int
}

func (f *fakeRecordViews) Overview(context.Context) (*models.RecordTable, error) {
	return f.table, f.err
}

func (f *fakeRecordViews) Lookup(_ context.Context, query string) (*models.RecordTable, error) {
	f.lastQuery = query
	return f.table, f.err
}

func (f *fakeRecordViews) Extreme(_ context.Context, highest bool) (*models.RecordTable, error) {
	f.lastHighest = &highest
	return f.table, f.err
}

func (f *fakeRecordViews) Sorted(_ context.Context, ascending bool) (*models.RecordTable, error) {
	f.lastAsc = &ascending
	return f.table, f.err
}

func (f *fakeRecordViews) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

type fakeExporter struct {
	format models.ExportFormat
	order  models.SortOrder
}

func (f *fakeExporter) Render(_ context.Context, format models.ExportFormat, order models.SortOrder) (*models.ExportFile, error) {
	f.format, f.order = format, order
	return &models.ExportFile{Filename: "student_marks.csv", Format: format, ContentType: format.ContentType(), Payload: []byte("CODE\n")}, nil
}

type recordEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newRecordHandlerForTest() (*RecordHandler, *fakeRecordStore, *fakeRecordViews, *fakeExporter) {
	gin.SetMode(gin.TestMode)
	store := &fakeRecordStore{}
	views := &fakeRecordViews{table: &models.RecordTable{Title: "All Student Records"}}
	exports := &fakeExporter{}
	return NewRecordHandler(store, views, exports), store, views, exports
}

func performRequest(method, target string, body []byte, params gin.Params, handle gin.HandlerFunc) (*httptest.ResponseRecorder, recordEnvelope) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	handle(c)

	var envelope recordEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	return rec, envelope
}

func TestRecordHandlerOverview(t *testing.T) {
	h, _, _, _ := newRecordHandlerForTest()

	rec, envelope := performRequest(http.MethodGet, "/records", nil, nil, h.Overview)

	assert.Equal(t, http.StatusOK, rec.Code)
	var table models.RecordTable
	require.NoError(t, json.Unmarshal(envelope.Data, &table))
	assert.Equal(t, "All Student Records", table.Title)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRecordHandlerLookup(t *testing.T) {
	h, _, views, _ := newRecordHandlerForTest()

	rec, _ := performRequest(http.MethodGet, "/records/lookup", nil, nil, h.Lookup)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = performRequest(http.MethodGet, "/records/lookup?q=ali", nil, nil, h.Lookup)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ali", views.lastQuery)

	views.err = appErrors.Clone(appErrors.ErrNotFound, "no student found matching \"zed\"")
	rec, envelope := performRequest(http.MethodGet, "/records/lookup?q=zed", nil, nil, h.Lookup)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestRecordHandlerSortedAndExtreme(t *testing.T) {
	h, _, views, _ := newRecordHandlerForTest()

	rec, _ := performRequest(http.MethodGet, "/records/sorted?order=desc", nil, nil, h.Sorted)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, views.lastAsc)
	assert.False(t, *views.lastAsc)

	rec, _ = performRequest(http.MethodGet, "/records/sorted?order=up", nil, nil, h.Sorted)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = performRequest(http.MethodGet, "/records/extreme?which=lowest", nil, nil, h.Extreme)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, views.lastHighest)
	assert.False(t, *views.lastHighest)

	rec, _ = performRequest(http.MethodGet, "/records/extreme?which=middle", nil, nil, h.Extreme)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordHandlerCreate(t *testing.T) {
	h, store, _, _ := newRecordHandlerForTest()

	body := []byte(`{"code":1001,"name":"Alice","cw1":18,"cw2":17,"cw3":19,"exam":80}`)
	rec, _ := performRequest(http.MethodPost, "/records", body, nil, h.Create)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.StudentMarks{Code: 1001, Name: "Alice", CW1: 18, CW2: 17, CW3: 19, Exam: 80}, store.added)

	rec, _ = performRequest(http.MethodPost, "/records", []byte(`{"code":1001,"name":"Alice"}`), nil, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.addErr = appErrors.Clone(appErrors.ErrConflict, "student code 1001 already exists")
	rec, envelope := performRequest(http.MethodPost, "/records", body, nil, h.Create)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
}

func TestRecordHandlerUpdate(t *testing.T) {
	h, store, _, _ := newRecordHandlerForTest()
	store.updateRec = models.StudentRecord{StudentMarks: models.StudentMarks{Code: 1002, Name: "Bob"}}

	params := gin.Params{{Key: "selector", Value: "bob"}}
	rec, envelope := performRequest(http.MethodPatch, "/records/bob", []byte(`{"field":"EXAM","value":100}`), params, h.Update)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.FieldExam, store.updateFld)
	assert.Equal(t, "100", store.updateVal)
	assert.False(t, store.updateSel.ByCode)

	var table models.RecordTable
	require.NoError(t, json.Unmarshal(envelope.Data, &table))
	assert.Equal(t, "Updated Record for Bob", table.Title)

	rec, envelope = performRequest(http.MethodPatch, "/records/bob", []byte(`{"field":"code","value":1}`), params, h.Update)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNKNOWN_FIELD", envelope.Error.Code)
}

func TestRecordHandlerDelete(t *testing.T) {
	h, store, _, _ := newRecordHandlerForTest()
	store.deleteN = 1

	rec, envelope := performRequest(http.MethodDelete, "/records/1001", nil, gin.Params{{Key: "selector", Value: "1001"}}, h.Delete)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.deleted.ByCode)
	assert.JSONEq(t, `{"selector":"1001","removed":1}`, string(envelope.Data))

	store.deleteErr = appErrors.Clone(appErrors.ErrNotFound, "missing")
	rec, _ = performRequest(http.MethodDelete, "/records/9", nil, gin.Params{{Key: "selector", Value: "9"}}, h.Delete)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordHandlerReload(t *testing.T) {
	h, store, views, _ := newRecordHandlerForTest()

	rec, envelope := performRequest(http.MethodPost, "/records/reload", nil, nil, h.Reload)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, views.invalidated)
	assert.Equal(t, true, envelope.Meta["cache_invalidated"])

	store.reloadErr = appErrors.Wrap(errors.New("gone"), appErrors.ErrDataFileMissing.Code, appErrors.ErrDataFileMissing.Status, "data file missing")
	rec, _ = performRequest(http.MethodPost, "/records/reload", nil, nil, h.Reload)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1, views.invalidated)
}

func TestRecordHandlerExport(t *testing.T) {
	h, _, _, exports := newRecordHandlerForTest()

	rec, _ := performRequest(http.MethodGet, "/records/export?format=csv&order=d", nil, nil, h.Export)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderDescending, exports.order)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "student_marks.csv")
	assert.Equal(t, "CODE\n", rec.Body.String())

	rec, _ = performRequest(http.MethodGet, "/records/export?format=xls", nil, nil, h.Export)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
