package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"resume-export/internal/adapter/repository"
	"resume-export/internal/cvtemplate"
	"resume-export/internal/domain"
	"resume-export/internal/model"
	"resume-export/internal/usecase"
)

// Exporter is implemented by *usecase.Exporter.
type Exporter interface {
	Export(ctx context.Context, req usecase.ExportRequest) (*usecase.ExportResult, error)
}

type Handler struct {
	exporter Exporter
	catalog  *cvtemplate.Catalog
	limiter  *UserRateLimiter
	log      zerolog.Logger
}

// NewHandler wires the HTTP routes. A nil limiter disables rate limiting.
func NewHandler(e Exporter, catalog *cvtemplate.Catalog, limiter *UserRateLimiter, log zerolog.Logger) *Handler {
	return &Handler{exporter: e, catalog: catalog, limiter: limiter, log: log}
}

// Register mounts the routes on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/healthz", h.Health)

	api := app.Group("/api/v1", RequireUser())
	api.Get("/templates", h.ListTemplates)
	if h.limiter != nil {
		api.Post("/exports", h.limiter.Middleware(), h.CreateExport)
	} else {
		api.Post("/exports", h.CreateExport)
	}
}

type exportReq struct {
	Template    string              `json:"template"`
	CV          json.RawMessage     `json:"cv,omitempty"`
	CVID        string              `json:"cvId,omitempty"`
	PageOptions *domain.PageOptions `json:"pageOptions,omitempty"`
}

func (h *Handler) CreateExport(c *fiber.Ctx) error {
	var req exportReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	in := usecase.ExportRequest{
		UserID:      userID(c),
		Template:    req.Template,
		PageOptions: req.PageOptions,
	}
	if len(req.CV) > 0 && string(req.CV) != "null" {
		in.CV = req.CV
	}
	if req.CVID != "" {
		id, err := uuid.Parse(req.CVID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid cvId"})
		}
		in.CVID = &id
	}

	res, err := h.exporter.Export(c.UserContext(), in)
	if err != nil {
		status := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			h.log.Error().Err(err).Str("user_id", in.UserID.String()).Msg("export failed")
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="cv-%s.pdf"`, res.Export.ID))
	c.Set("X-Export-ID", res.Export.ID.String())
	c.Set("X-Pages-Removed", joinInts(res.Export.RemovedPages))
	return c.Status(fiber.StatusOK).Send(res.PDF)
}

func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"default":   h.catalog.Default(),
		"templates": h.catalog.List(),
	})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrMissingCV),
		errors.Is(err, model.ErrInvalidCV),
		errors.Is(err, cvtemplate.ErrUnknownTemplate):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrCVNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrNoCVSource), errors.Is(err, repository.ErrNoDatabase):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, usecase.ErrRender):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ",")
}
