package uploads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// multipart framing on top of the file itself
const multipartOverhead = 64 << 10

// RegisterRoutes attaches the template intake route.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume-template", readTemplate)
}

func readTemplate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxTemplateBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(c, http.StatusRequestEntityTooLarge, MsgTooLarge)
			return
		}
		respond.Error(c, http.StatusBadRequest, "file is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(err)
		respond.Error(c, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer f.Close()

	tmpl, err := ReadTemplate(fh.Filename, fh.Header.Get("Content-Type"), f)
	switch {
	case errors.Is(err, ErrUnsupportedType):
		respond.Error(c, http.StatusUnsupportedMediaType, MsgUnsupportedType)
		return
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, MsgTooLarge)
		return
	case err != nil:
		_ = c.Error(err)
		respond.Error(c, http.StatusInternalServerError, "failed to read file")
		return
	}

	telemetry.Info("uploads.template.read", map[string]any{
		"mime_type":  tmpl.MimeType,
		"size_bytes": tmpl.SizeBytes,
		"checksum":   tmpl.Checksum,
		"request_id": c.GetString("requestId"),
	})
	respond.OK(c, tmpl)
}
