package constants

import (
	"path/filepath"
	"strings"
)

// SourceFormat classifies an uploaded file for the content reader.
type SourceFormat string

const (
	FormatText     SourceFormat = "TEXT"     // read verbatim as plain text
	FormatDocument SourceFormat = "DOCUMENT" // word-processor container, converted to text
	FormatImage    SourceFormat = "IMAGE"    // forwarded to the AI service as inline binary
	FormatPDF      SourceFormat = "PDF"      // forwarded to the AI service as inline binary
	FormatBinary   SourceFormat = "BINARY"   // unrecognized, treated as inline binary
)

// TextExtensions are read verbatim as plain text.
var TextExtensions = map[string]struct{}{
	"txt":      {},
	"text":     {},
	"md":       {},
	"markdown": {},
}

// DocumentExtensions are word-processor containers that need text conversion.
// Classification is by extension, not declared mime type: browsers routinely
// misreport these as application/octet-stream or worse.
var DocumentExtensions = map[string]struct{}{
	"docx": {},
	"odt":  {},
}

// ImageExtensions are the image types we generate previews for.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
	"bmp":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FormatForFile classifies a file by name and declared mime type.
// The declared type only decides the text case ("text/plain" with any
// parameters); everything else goes by extension.
func FormatForFile(name, declaredType string) SourceFormat {
	ext := NormalizeExt(filepath.Ext(name))
	if _, ok := DocumentExtensions[ext]; ok {
		return FormatDocument
	}
	if mediaType(declaredType) == "text/plain" {
		return FormatText
	}
	if _, ok := TextExtensions[ext]; ok {
		return FormatText
	}
	if _, ok := ImageExtensions[ext]; ok {
		return FormatImage
	}
	if ext == "pdf" {
		return FormatPDF
	}
	return FormatBinary
}

// mediaType strips parameters ("text/plain; charset=utf-8" -> "text/plain").
func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
