package preview

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/render"
)

const (
	formatHTML = "html"
	formatPDF  = "pdf"
)

// PDFPrinter turns a rendered page into a PDF.
type PDFPrinter interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

// Handler renders generated buffers.
type Handler struct {
	Renderer *render.Renderer
	// PDF is nil when no Chrome binary is configured.
	PDF PDFPrinter
}

// NewHandler constructs a Handler. pdf may be nil.
func NewHandler(renderer *render.Renderer, pdf PDFPrinter) *Handler {
	return &Handler{Renderer: renderer, PDF: pdf}
}

type previewRequest struct {
	Content string `json:"content"`
	Style   string `json:"style"`
	Format  string `json:"format"`
}

// RegisterRoutes attaches the preview route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/preview", h.preview)
}

func (h *Handler) preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	style, err := render.ParseStyle(req.Style)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "style must be classic or modern")
		return
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = formatHTML
	}
	if format != formatHTML && format != formatPDF {
		respond.Error(c, http.StatusBadRequest, "format must be html or pdf")
		return
	}
	if format == formatPDF && h.PDF == nil {
		respond.Error(c, http.StatusNotImplemented, "pdf rendering is not enabled")
		return
	}

	var page bytes.Buffer
	if err := h.Renderer.Render(&page, req.Content, style); err != nil {
		_ = c.Error(err)
		respond.Error(c, http.StatusInternalServerError, "failed to render preview")
		return
	}
	if format == formatHTML {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
		return
	}

	pdf, err := h.PDF.RenderPDF(c.Request.Context(), page.Bytes())
	if err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		respond.Error(c, status, "failed to render pdf")
		return
	}
	c.Header("Content-Disposition", `inline; filename="resume.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
