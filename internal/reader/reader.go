package reader

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/AlexViridi/TandoorRecipeMigration/constants"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/common"
)

// Content is the AI-consumable form of one uploaded file. Exactly one
// of Text and Data is set: Text for plain-text sources (including
// converted word-processor documents), Data for base64-encoded binary
// ones. MimeType accompanies both ("text/plain" on the text path).
type Content struct {
	Text     string
	Data     string
	MimeType string
}

// IsText reports whether the content travels as an embedded text block
// rather than a binary attachment.
func (c Content) IsText() bool {
	return c.Data == ""
}

// DataURL renders binary content as a data URL suitable for inline
// attachments.
func (c Content) DataURL() string {
	return "data:" + c.MimeType + ";base64," + c.Data
}

// DocExtractor converts a word-processor document to plain text.
type DocExtractor interface {
	ExtractText(path string) (string, error)
}

// Reader turns uploaded files into extraction-ready content.
type Reader struct {
	docs DocExtractor
}

func New(docs DocExtractor) *Reader {
	return &Reader{docs: docs}
}

// Read loads the file at path and converts it according to its format.
// name is the original upload name (the stored path may carry a
// synthetic one) and declaredType is the content type the uploader
// declared. Format dispatch goes by extension first because browsers
// frequently misreport document types.
func (r *Reader) Read(path, name, declaredType string) (Content, error) {
	switch constants.FormatForFile(name, declaredType) {
	case constants.FormatDocument:
		if r.docs == nil {
			return Content{}, common.NewReaderFailure(fmt.Sprintf("no document extractor configured for %q", name), nil)
		}
		text, err := r.docs.ExtractText(path)
		if err != nil {
			return Content{}, common.NewReaderFailure(fmt.Sprintf("cannot convert document %q to text", name), err)
		}
		return Content{Text: text, MimeType: "text/plain"}, nil

	case constants.FormatText:
		b, err := os.ReadFile(path)
		if err != nil {
			return Content{}, common.NewReaderFailure(fmt.Sprintf("cannot read file %q", name), err)
		}
		return Content{Text: string(b), MimeType: "text/plain"}, nil

	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return Content{}, common.NewReaderFailure(fmt.Sprintf("cannot read file %q", name), err)
		}
		return Content{
			Data:     base64.StdEncoding.EncodeToString(b),
			MimeType: resolveMimeType(b, name, declaredType),
		}, nil
	}
}

// resolveMimeType prefers the declared type, then the extension table,
// then content sniffing.
func resolveMimeType(data []byte, name, declaredType string) string {
	if mt := strings.TrimSpace(strings.Split(declaredType, ";")[0]); mt != "" && mt != "application/octet-stream" {
		return mt
	}
	if mt := strings.Split(mime.TypeByExtension(strings.ToLower(filepath.Ext(name))), ";")[0]; mt != "" && mt != "application/octet-stream" {
		return mt
	}
	return mimetype.Detect(data).String()
}
