package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdfgate/internal/model"
	"pdfgate/internal/resolver"
	"pdfgate/internal/service"
	serviceMocks "pdfgate/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func allowedResult(filename string, content []byte) *service.ServeResult {
	return &service.ServeResult{
		Decision: model.Allowed(),
		Document: &service.Document{
			Filename:    filename,
			ContentType: "application/pdf",
			Size:        int64(len(content)),
			Content:     io.NopCloser(bytes.NewReader(content)),
		},
	}
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServePDF(t *testing.T) {
	mockSvc := new(serviceMocks.MockPDFService)
	app := fiber.New()
	app.Get("/pdf/:pid/:lid/:action?", ServePDF(mockSvc, "198.51.100.1"))

	t.Run("allowed view streams inline", func(t *testing.T) {
		content := []byte("%PDF-1.7 test")
		mockSvc.On("Serve", mock.Anything, "cfg-1", "entry-1", mock.MatchedBy(func(a *model.AuthorizationContext) bool {
			return a.Action == model.ActionView && a.ServerIP == "198.51.100.1"
		})).Return(allowedResult("invoice.pdf", content), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/pdf/cfg-1/entry-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		assert.Equal(t, `inline; filename="invoice.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, content, body)
		mockSvc.AssertExpectations(t)
	})

	t.Run("allowed download streams as attachment", func(t *testing.T) {
		mockSvc.On("Serve", mock.Anything, "cfg-1", "entry-1", mock.MatchedBy(func(a *model.AuthorizationContext) bool {
			return a.Action == model.ActionDownload
		})).Return(allowedResult("invoice.pdf", []byte("pdf")), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/pdf/cfg-1/entry-1/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `attachment; filename="invoice.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))
		mockSvc.AssertExpectations(t)
	})

	t.Run("signature params reach the authorization context", func(t *testing.T) {
		mockSvc.On("Serve", mock.Anything, "cfg-1", "entry-1", mock.MatchedBy(func(a *model.AuthorizationContext) bool {
			return a.Signature == "abc123" && a.Expires == "1700000000"
		})).Return(allowedResult("doc.pdf", []byte("pdf")), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/pdf/cfg-1/entry-1?expires=1700000000&signature=abc123", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("requires authentication", func(t *testing.T) {
		mockSvc.On("Serve", mock.Anything, "cfg-1", "entry-1", mock.Anything).
			Return(&service.ServeResult{Decision: model.RequiresAuthentication()}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/pdf/cfg-1/entry-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "AUTHENTICATION_REQUIRED", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("denials map to statuses", func(t *testing.T) {
		tests := []struct {
			name       string
			reason     model.DenyReason
			wantStatus int
			wantCode   string
		}{
			{"invalid entry", model.ReasonInvalidEntry, http.StatusNotFound, "NOT_FOUND"},
			{"invalid config", model.ReasonInvalidConfig, http.StatusNotFound, "NOT_FOUND"},
			{"conditional logic failed", model.ReasonConditionalLogicFailed, http.StatusNotFound, "NOT_FOUND"},
			{"inactive", model.ReasonInactive, http.StatusGone, "DOCUMENT_INACTIVE"},
			{"timeout expired", model.ReasonTimeoutExpired, http.StatusForbidden, "TIMEOUT_EXPIRED"},
			{"access denied", model.ReasonAccessDenied, http.StatusForbidden, "ACCESS_DENIED"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockSvc.On("Serve", mock.Anything, "cfg-1", "entry-1", mock.Anything).
					Return(&service.ServeResult{Decision: model.Denied(tt.reason)}, nil).Once()

				req := httptest.NewRequest(http.MethodGet, "/pdf/cfg-1/entry-1", nil)
				resp, _ := app.Test(req)

				assert.Equal(t, tt.wantStatus, resp.StatusCode)
				var res errorPayload
				json.NewDecoder(resp.Body).Decode(&res)
				assert.Equal(t, tt.wantCode, res.Error.Code)
			})
		}
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Serve", mock.Anything, "cfg-1", "entry-1", mock.Anything).
			Return(nil, errors.New("render failed")).Once()

		req := httptest.NewRequest(http.MethodGet, "/pdf/cfg-1/entry-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestServeFromQuery(t *testing.T) {
	mockSvc := new(serviceMocks.MockPDFService)
	app := fiber.New()
	app.Get("/", ServeFromQuery(mockSvc, ""))

	t.Run("without gpdf marker", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("query form serves by pid and lid", func(t *testing.T) {
		mockSvc.On("Serve", mock.Anything, "cfg-1", "entry-1", mock.MatchedBy(func(a *model.AuthorizationContext) bool {
			return a.Action == model.ActionDownload
		})).Return(allowedResult("doc.pdf", []byte("pdf")), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/?gpdf=1&pid=cfg-1&lid=entry-1&action=download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing pid and template", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?gpdf=1&lid=entry-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_REQUEST", res.Error.Code)
	})

	t.Run("legacy link resolves template and aid", func(t *testing.T) {
		mockSvc.On("ResolveLegacyLink", mock.Anything, "entry-1", "invoice", 2).
			Return("cfg-2", nil).Once()
		mockSvc.On("Serve", mock.Anything, "cfg-2", "entry-1", mock.Anything).
			Return(allowedResult("doc.pdf", []byte("pdf")), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/?gpdf=1&template=invoice&aid=2&lid=entry-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("legacy link with no matching config", func(t *testing.T) {
		mockSvc.On("ResolveLegacyLink", mock.Anything, "entry-1", "missing", 0).
			Return("", resolver.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/?gpdf=1&template=missing&lid=entry-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestStreamSize(t *testing.T) {
	assert.Equal(t, 0, streamSize(0))
	assert.Equal(t, 11, streamSize(11))
	assert.Equal(t, int(math.MaxInt32), streamSize(math.MaxInt32))
	// Past what a 32-bit int can hold the stream falls back to chunked
	assert.Equal(t, -1, streamSize(int64(math.MaxInt32)+1))
}

func TestListEntryDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockPDFService)
	app := fiber.New()
	app.Get("/entries/:lid/documents", ListEntryDocuments(mockSvc, "198.51.100.1"))

	t.Run("success", func(t *testing.T) {
		docs := []service.EntryDocument{
			{ConfigID: "cfg-1", Name: "Invoice", ViewURL: "https://example.com/pdf/cfg-1/entry-1/", DownloadURL: "https://example.com/pdf/cfg-1/entry-1/download/"},
		}
		// The listing must carry the requester's authorization context so
		// the service can gate which documents it returns.
		mockSvc.On("ListForEntry", mock.Anything, "entry-1", mock.MatchedBy(func(a *model.AuthorizationContext) bool {
			return a != nil && a.Action == model.ActionView && a.ServerIP == "198.51.100.1"
		})).Return(docs, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/entries/entry-1/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Documents []service.EntryDocument `json:"documents"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result.Documents, 1)
		assert.Equal(t, "cfg-1", result.Documents[0].ConfigID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("entry not found", func(t *testing.T) {
		mockSvc.On("ListForEntry", mock.Anything, "nope", mock.Anything).Return(nil, service.ErrEntryNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/entries/nope/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("ListForEntry", mock.Anything, "entry-1", mock.Anything).Return(nil, errors.New("store error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/entries/entry-1/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockPDFService)
	// Register all routes
	RegisterRoutes(app, nil, mockSvc, "")

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		// Fiber returns 405 by default if route exists but method doesn't match
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
