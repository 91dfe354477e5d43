package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resume-export/internal/adapter/repository"
	"resume-export/internal/cvtemplate"
	"resume-export/internal/domain"
	"resume-export/internal/model"
	"resume-export/internal/usecase"
)

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) Export(ctx context.Context, req usecase.ExportRequest) (*usecase.ExportResult, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*usecase.ExportResult)
	return res, args.Error(1)
}

func newApp(t *testing.T, exp Exporter) *fiber.App {
	t.Helper()
	catalog, err := cvtemplate.Load(filepath.Join("..", "..", "..", "templates"))
	require.NoError(t, err)
	app := fiber.New()
	NewHandler(exp, catalog, nil, zerolog.Nop()).Register(app)
	return app
}

func postExport(uid, body string) *nethttp.Request {
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/exports", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if uid != "" {
		req.Header.Set(HeaderUserID, uid)
	}
	return req
}

func TestCreateExport_ReturnsPDF(t *testing.T) {
	uid := uuid.New()
	exportID := uuid.New()
	pdf := []byte("%PDF-1.4 fake")

	exp := new(mockExporter)
	exp.On("Export", mock.MatchedBy(func(r usecase.ExportRequest) bool {
		return r.UserID == uid && r.Template == "compact" && len(r.CV) > 0 && r.PageOptions != nil && r.PageOptions.MarginTop == 0.2
	})).Return(&usecase.ExportResult{
		Export: &domain.CVExport{ID: exportID, RemovedPages: []int{1, 3}},
		PDF:    pdf,
	}, nil).Once()

	app := newApp(t, exp)
	resp, err := app.Test(postExport(uid.String(), `{"template":"compact","cv":{"meta":{"name":"A"}},"pageOptions":{"marginTop":0.2}}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, exportID.String(), resp.Header.Get("X-Export-ID"))
	assert.Equal(t, "1,3", resp.Header.Get("X-Pages-Removed"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), fmt.Sprintf("cv-%s.pdf", exportID))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, pdf, body)
	exp.AssertExpectations(t)
}

func TestCreateExport_StoredCV(t *testing.T) {
	cvID := uuid.New()
	exp := new(mockExporter)
	exp.On("Export", mock.MatchedBy(func(r usecase.ExportRequest) bool {
		return r.CVID != nil && *r.CVID == cvID && r.CV == nil
	})).Return(nil, fmt.Errorf("load: %w", repository.ErrCVNotFound)).Once()

	resp, err := newApp(t, exp).Test(postExport(uuid.NewString(), fmt.Sprintf(`{"cvId":%q}`, cvID)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	exp.AssertExpectations(t)
}

func TestCreateExport_RequiresUser(t *testing.T) {
	exp := new(mockExporter)
	app := newApp(t, exp)

	for _, uid := range []string{"", "not-a-uuid"} {
		resp, err := app.Test(postExport(uid, `{}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	}
	exp.AssertNotCalled(t, "Export", mock.Anything)
}

func TestCreateExport_BadRequests(t *testing.T) {
	exp := new(mockExporter)
	app := newApp(t, exp)

	for name, body := range map[string]string{
		"malformed json": `{"template":`,
		"invalid cv id":  `{"cvId":"nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(postExport(uuid.NewString(), body))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
	exp.AssertNotCalled(t, "Export", mock.Anything)
}

func TestCreateExport_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{usecase.ErrMissingCV, fiber.StatusBadRequest},
		{fmt.Errorf("%w: meta.name", model.ErrInvalidCV), fiber.StatusBadRequest},
		{fmt.Errorf("%w: \"neon\"", cvtemplate.ErrUnknownTemplate), fiber.StatusBadRequest},
		{usecase.ErrNoCVSource, fiber.StatusServiceUnavailable},
		{fmt.Errorf("%w after 3 attempts", usecase.ErrRender), fiber.StatusBadGateway},
		{context.DeadlineExceeded, fiber.StatusGatewayTimeout},
		{errors.New("unexpected"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			exp := new(mockExporter)
			exp.On("Export", mock.Anything).Return(nil, tt.err)

			resp, err := newApp(t, exp).Test(postExport(uuid.NewString(), `{"cv":{}}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestListTemplates(t *testing.T) {
	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/templates", nil)
	req.Header.Set(HeaderUserID, uuid.NewString())

	resp, err := newApp(t, new(mockExporter)).Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Default   string `json:"default"`
		Templates []struct {
			Name string             `json:"name"`
			Page domain.PageOptions `json:"page"`
		} `json:"templates"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "classic", body.Default)
	require.Len(t, body.Templates, 2)
	assert.Equal(t, 8.27, body.Templates[0].Page.PaperWidth)
}

func TestHealth(t *testing.T) {
	resp, err := newApp(t, new(mockExporter)).Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCreateExport_RateLimited(t *testing.T) {
	catalog, err := cvtemplate.Load(filepath.Join("..", "..", "..", "templates"))
	require.NoError(t, err)

	exp := new(mockExporter)
	exp.On("Export", mock.Anything).Return(&usecase.ExportResult{
		Export: &domain.CVExport{ID: uuid.New()},
		PDF:    []byte("%PDF-1.4"),
	}, nil).Once()

	app := fiber.New()
	NewHandler(exp, catalog, NewUserRateLimiter(1, 1), zerolog.Nop()).Register(app)
	uid := uuid.NewString()

	resp, err := app.Test(postExport(uid, `{"cv":{}}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(postExport(uid, `{"cv":{}}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	exp.AssertExpectations(t)
}
