package generation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

const recordTimeout = 5 * time.Second

// Recorder keeps an audit trail of finished relays.
type Recorder interface {
	RecordGeneration(ctx context.Context, res Result) error
}

// Handler wires HTTP handlers to the generation service.
type Handler struct {
	Svc      *Service
	Recorder Recorder
}

// NewHandler constructs a Handler. rec may be nil.
func NewHandler(svc *Service, rec Recorder) *Handler {
	return &Handler{Svc: svc, Recorder: rec}
}

// RegisterRoutes attaches the generation route; mw runs before the handler.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/generate-resume", append(mw, h.generate)...)
}

func (h *Handler) generate(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		respond.Error(c, http.StatusInternalServerError, MsgProcessing)
		return
	}

	gen, err := h.Svc.Open(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrJobDescriptionRequired) {
			respond.Text(c, http.StatusBadRequest, MsgJobDescriptionRequired)
			return
		}
		_ = c.Error(err)
		respond.Error(c, http.StatusInternalServerError, MsgProcessing)
		return
	}
	c.Set(middleware.GenerationIDKey, gen.ID())

	res := gen.Relay(NewHTTPSink(c.Writer))
	res.RequestID = middleware.RequestIDFromContext(c)
	c.Set(middleware.GenerationOutcomeKey, string(res.Outcome))

	if h.Recorder == nil {
		return
	}
	// The client may already be gone; the audit row is written regardless.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), recordTimeout)
	defer cancel()
	if err := h.Recorder.RecordGeneration(ctx, res); err != nil {
		telemetry.Warn("generation.record_failed", map[string]any{
			"generation_id": res.ID,
			"error":         err,
		})
	}
}
