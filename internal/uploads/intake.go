package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"resume-builder/internal/shared/util"
)

// MaxTemplateBytes is the largest accepted template file.
const MaxTemplateBytes = 5 << 20

// Client-visible rejection messages.
const (
	MsgTooLarge        = "File size must be less than 5MB"
	MsgUnsupportedType = "Please upload a PDF, DOC, DOCX, or TXT file"
)

var (
	ErrTooLarge        = errors.New("template exceeds size limit")
	ErrUnsupportedType = errors.New("template type not allowed")
)

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

var allowedContentTypes = map[string]struct{}{
	mimePDF:  {},
	mimeDOC:  {},
	mimeDOCX: {},
	mimeText: {},
}

var extensionTypes = map[string]string{
	".pdf":  mimePDF,
	".doc":  mimeDOC,
	".docx": mimeDOCX,
	".txt":  mimeText,
}

// Template is an accepted upload read as text. Binary formats are not extracted, so PDF or
// Word files yield whatever their bytes decode to.
type Template struct {
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Checksum  string `json:"checksum"`
	Text      string `json:"resumeTemplate"`
}

// ReadTemplate validates and reads one upload. declared is the client-supplied content type;
// it wins when specific, otherwise the content is sniffed.
func ReadTemplate(name, declared string, r io.Reader) (Template, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxTemplateBytes+1))
	if err != nil {
		return Template{}, fmt.Errorf("read template: %w", err)
	}

	mimeType, ok := ResolveType(declared, data)
	if !ok {
		return Template{}, ErrUnsupportedType
	}
	if len(data) > MaxTemplateBytes {
		return Template{}, ErrTooLarge
	}

	fileName, err := util.SanitizeFileName(name)
	if err != nil {
		fileName = "template"
	}
	return Template{
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		Checksum:  util.Fingerprint(data),
		Text:      strings.ToValidUTF8(string(data), "\uFFFD"),
	}, nil
}

// ReadTemplateFile reads a template from disk, declaring its type from the extension.
func ReadTemplateFile(path string) (Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return Template{}, err
	}
	defer f.Close()
	return ReadTemplate(filepath.Base(path), extensionTypes[strings.ToLower(filepath.Ext(path))], f)
}

// ResolveType returns the accepted media type for an upload, if any.
func ResolveType(declared string, data []byte) (string, bool) {
	if base := baseType(declared); base != "" && !isGeneric(base) {
		_, ok := allowedContentTypes[base]
		return base, ok
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		base := baseType(m.String())
		if _, ok := allowedContentTypes[base]; ok {
			return base, true
		}
	}
	return "", false
}

func baseType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return mediaType
}

func isGeneric(mediaType string) bool {
	return mediaType == "application/octet-stream" || mediaType == "binary/octet-stream"
}
