package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctum/internal/domain"
	models "sanctum/internal/domain/models/library"
	aiSvc "sanctum/internal/domain/services/ai"
	notionSvc "sanctum/internal/domain/services/notion"
	"sanctum/internal/repository/sqlite"
	"sanctum/internal/service/library"
	"sanctum/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLibrarian struct {
	lastDocType aiSvc.DocType
}

func (f *fakeLibrarian) Summarize(_ context.Context, content string, docType aiSvc.DocType) string {
	f.lastDocType = docType
	return "summary of " + content
}

func (f *fakeLibrarian) Ask(_ context.Context, question, _ string) string {
	return "answer to " + question
}

type fakeImporter struct {
	err    error
	tokens []string
}

func (f *fakeImporter) SearchPages(_ context.Context, token string) ([]notionSvc.Page, error) {
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	return []notionSvc.Page{{ID: "p1", Title: "Reading", Icon: "📚"}}, nil
}

func (f *fakeImporter) PageMarkdown(_ context.Context, token, pageID string) (string, error) {
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return "", f.err
	}
	return "# " + pageID + "\n", nil
}

type testServer struct {
	handler   http.Handler
	librarian *fakeLibrarian
	importer  *fakeImporter
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	nodes := library.NewNodeService(sqlite.NewNodeRepository(store), sqlite.NewTransactionManager(store), testLogger())
	require.NoError(t, nodes.EnsureRoot(context.Background()))

	dir := t.TempDir()
	blobs, err := storage.NewLocalStore(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	ts := &testServer{
		librarian: &fakeLibrarian{},
		importer:  &fakeImporter{},
		uploadDir: dir,
	}
	routes := &Routes{
		Files:   NewFileHandler(nodes, testLogger()),
		Upload:  NewUploadHandler(blobs, testLogger()),
		AI:      NewAIHandler(ts.librarian, testLogger()),
		Notion:  NewNotionHandler(ts.importer, testLogger()),
		Uploads: http.FileServer(http.Dir(dir)),
	}
	mux := http.NewServeMux()
	routes.Register(mux)
	ts.handler = mux
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Changes *int64          `json:"changes"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func problemField(t *testing.T, rec *httptest.ResponseRecorder, key string) interface{} {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem[key]
}

func TestListFiles(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/files", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "success", env.Message)

	var fs map[string]*models.Node
	require.NoError(t, json.Unmarshal(env.Data, &fs))
	require.Contains(t, fs, models.RootID)
	assert.True(t, fs[models.RootID].Expanded)
	assert.Equal(t, []string{"folder-1", "file-welcome"}, fs[models.RootID].Children)
}

func TestCreateUpdateDeleteFile(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/files", map[string]interface{}{
		"id":       "shelf",
		"parentId": "folder-1",
		"name":     "Shelf",
		"type":     "FOLDER",
		"version":  1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/files", map[string]interface{}{
		"id":       "book",
		"parentId": "shelf",
		"name":     "book.md",
		"type":     "MARKDOWN",
		"content":  "# Book",
		"version":  1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPut, "/api/files/book", map[string]interface{}{"name": "novel.md", "version": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Node
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &updated))
	assert.Equal(t, "novel.md", updated.Name)
	assert.Equal(t, int64(2), updated.Version)

	// A write that lost the race is rejected
	rec = ts.do(t, http.MethodPut, "/api/files/book", map[string]interface{}{"name": "older.md", "version": 2})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "stale_write", problemField(t, rec, "code"))

	rec = ts.do(t, http.MethodDelete, "/api/files/shelf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "deleted", env.Message)
	require.NotNil(t, env.Changes)
	assert.Equal(t, int64(2), *env.Changes)
}

func TestFileErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"create under a document", http.MethodPost, "/api/files", map[string]interface{}{
			"parentId": "file-welcome", "name": "x.md", "type": "MARKDOWN",
		}, http.StatusBadRequest},
		{"create with bad kind", http.MethodPost, "/api/files", map[string]interface{}{
			"parentId": "root", "name": "x", "type": "VIDEO",
		}, http.StatusBadRequest},
		{"create duplicate id", http.MethodPost, "/api/files", map[string]interface{}{
			"id": "folder-1", "parentId": "root", "name": "again", "type": "FOLDER",
		}, http.StatusConflict},
		{"move root", http.MethodPut, "/api/files/root", map[string]interface{}{"parentId": "folder-1"}, http.StatusBadRequest},
		{"update missing", http.MethodPut, "/api/files/ghost", map[string]interface{}{"name": "x"}, http.StatusNotFound},
		{"delete root", http.MethodDelete, "/api/files/root", nil, http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/api/files/ghost", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			rec := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateFile_InvalidJSON(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/files", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, multipartRequest(t, "file", "paper.pdf", []byte("%PDF-1.7 body")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp["url"], "http://localhost:8080/uploads/"), resp["url"])
	assert.True(t, strings.HasSuffix(resp["url"], ".pdf"))

	key := strings.TrimPrefix(resp["url"], "http://localhost:8080/uploads/")
	stored, err := os.ReadFile(filepath.Join(ts.uploadDir, key))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(stored))

	// The stored file is served back
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+key, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.7 body", rec.Body.String())
}

func TestUpload_Rejected(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, multipartRequest(t, "file", "notes.txt", []byte("hello")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, multipartRequest(t, "attachment", "paper.pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAI(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/ai/summarize", map[string]string{"content": "a long text"})
	require.Equal(t, http.StatusOK, rec.Code)
	var reply map[string]string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &reply))
	assert.Equal(t, "summary of a long text", reply["text"])
	assert.Equal(t, aiSvc.DocTypeMarkdown, ts.librarian.lastDocType)

	rec = ts.do(t, http.MethodPost, "/api/ai/summarize", map[string]string{"content": "x", "docType": "docx"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/ai/ask", map[string]string{"question": "who wrote it?", "context": "..."})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &reply))
	assert.Equal(t, "answer to who wrote it?", reply["text"])

	rec = ts.do(t, http.MethodPost, "/api/ai/ask", map[string]string{"question": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotion(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notion/pages", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/notion/pages", nil)
	req.Header.Set(notionSvc.TokenHeader, "secret_abc")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var pages []notionSvc.Page
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &pages))
	assert.Equal(t, []notionSvc.Page{{ID: "p1", Title: "Reading", Icon: "📚"}}, pages)

	req = httptest.NewRequest(http.MethodGet, "/api/notion/pages/p1/markdown", nil)
	req.Header.Set(notionSvc.TokenHeader, "secret_abc")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var page map[string]string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &page))
	assert.Equal(t, "# p1\n", page["markdown"])
	assert.Equal(t, []string{"secret_abc", "secret_abc"}, ts.importer.tokens)

	ts.importer.err = errors.New("unauthorized")
	req = httptest.NewRequest(http.MethodGet, "/api/notion/pages", nil)
	req.Header.Set(notionSvc.TokenHeader, "bad")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleError_TypedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"not found", &domain.NotFoundError{Message: "node gone"}, http.StatusNotFound, "node gone"},
		{"validation", &domain.ValidationError{Message: "bad name"}, http.StatusBadRequest, "bad name"},
		{"unauthorized", &domain.UnauthorizedError{Message: "no token"}, http.StatusUnauthorized, "no token"},
		{"forbidden", &domain.ForbiddenError{Message: "not yours"}, http.StatusForbidden, "not yours"},
		{"wrapped", fmt.Errorf("load node: %w", &domain.NotFoundError{Message: "node gone"}), http.StatusNotFound, "load node: node gone"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.detail, problemField(t, rec, "detail"))
		})
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
