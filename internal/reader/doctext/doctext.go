// Package doctext extracts plain text from word-processor documents.
//
// Both supported formats are zip archives around XML:
//   - .docx: Microsoft Word, text lives in word/document.xml
//   - .odt: OpenDocument Text, text lives in content.xml
//
// Extraction is pure Go with no external converters.
package doctext

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Extractor converts docx and odt files to plain text.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// ExtractText returns the document's text with one line per paragraph.
func (e *Extractor) ExtractText(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx":
		doc, err := readArchiveMember(path, "word/document.xml")
		if err != nil {
			return "", err
		}
		return docxText(doc)
	case ".odt":
		doc, err := readArchiveMember(path, "content.xml")
		if err != nil {
			return "", err
		}
		return odtText(doc)
	default:
		return "", fmt.Errorf("unsupported document type: %q", ext)
	}
}

func readArchiveMember(path, member string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", member, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", member)
}

// docxText collects the w:t runs of word/document.xml. Character data
// outside w:t (field instructions, deleted text) is skipped.
func docxText(doc []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var sb strings.Builder
	inRun := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inRun = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inRun {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// odtText collects character data inside text:p and text:h elements of
// content.xml.
func odtText(doc []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var sb strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse content.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p", "h":
				depth++
			case "s":
				if depth > 0 {
					sb.WriteByte(' ')
				}
			case "tab":
				if depth > 0 {
					sb.WriteByte('\t')
				}
			case "line-break":
				if depth > 0 {
					sb.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "h" {
				if depth--; depth == 0 {
					sb.WriteByte('\n')
				}
			}
		case xml.CharData:
			if depth > 0 {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
