package constants

import "testing"

func TestFormatForFile(t *testing.T) {
	cases := []struct {
		name     string
		declared string
		want     SourceFormat
	}{
		{"grandma.docx", "application/octet-stream", FormatDocument},
		{"grandma.odt", "", FormatDocument},
		{"notes.txt", "", FormatText},
		{"notes.md", "application/octet-stream", FormatText},
		{"pasted", "text/plain; charset=utf-8", FormatText},
		{"scan.pdf", "application/pdf", FormatPDF},
		{"photo.JPG", "image/jpeg", FormatImage},
		{"photo.webp", "", FormatImage},
		{"mystery.bin", "application/octet-stream", FormatBinary},
	}
	for _, c := range cases {
		if got := FormatForFile(c.name, c.declared); got != c.want {
			t.Fatalf("FormatForFile(%q, %q) = %s, want %s", c.name, c.declared, got, c.want)
		}
	}
}

func TestDocumentExtensionBeatsDeclaredText(t *testing.T) {
	// Browsers sometimes report docx as text/plain; the extension wins.
	if got := FormatForFile("recipe.docx", "text/plain"); got != FormatDocument {
		t.Fatalf("expected DOCUMENT for misreported docx, got %s", got)
	}
}

func TestNormalizeExt(t *testing.T) {
	if got := NormalizeExt(".PDF"); got != "pdf" {
		t.Fatalf("NormalizeExt(.PDF) = %q", got)
	}
	if got := NormalizeExt("jpeg"); got != "jpeg" {
		t.Fatalf("NormalizeExt(jpeg) = %q", got)
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusReview} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusError} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}
