package generations

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the generation history.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/generations", h.list)
	rg.GET("/generations/stats", h.stats)
}

func (h *Handler) list(c *gin.Context) {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respond.Error(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	items, err := h.Svc.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		respond.Error(c, http.StatusInternalServerError, "failed to list generations")
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) stats(c *gin.Context) {
	window := 24 * time.Hour
	if v := c.Query("since"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "since must be a duration such as 24h")
			return
		}
		window = parsed
	}

	stats, err := h.Svc.Stats(c.Request.Context(), window)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "since must be positive and at most 720h")
			return
		}
		_ = c.Error(err)
		respond.Error(c, http.StatusInternalServerError, "failed to load generation stats")
		return
	}
	respond.OK(c, stats)
}
