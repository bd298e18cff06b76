package parser

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	apperrors "cv-analyzer/pkg/errors"
)

func TestParse_TxtPassthrough(t *testing.T) {
	data := []byte("John Doe\n\n  Software Engineer  \n")
	parsed, err := Parse(data, "cv.txt")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.RawText != string(data) {
		t.Fatalf("raw text altered: %q", parsed.RawText)
	}
	want := "John Doe\nSoftware Engineer"
	if parsed.NormalizedText != want {
		t.Fatalf("normalized = %q, want %q", parsed.NormalizedText, want)
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	if _, err := Parse([]byte("data"), "cv.exe"); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParse_MalformedPDFReturnsError(t *testing.T) {
	// A file with a valid PDF header but a startxref offset landing on a
	// delimiter byte. The pdf library panics on input like this; Parse
	// must surface an error instead.
	data := []byte("%PDF-1.4\n) garbage that is not a cross reference table\nstartxref\n9\n%%EOF\n")
	if _, err := Parse(data, "cv.pdf"); err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
}

func TestParse_DOCX(t *testing.T) {
	parsed, err := Parse(buildDOCX(t, []string{"Jane Doe", "Senior Engineer"}), "cv.docx")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.Contains(parsed.NormalizedText, "Jane Doe") {
		t.Fatalf("missing paragraph text: %q", parsed.NormalizedText)
	}
	if !strings.Contains(parsed.NormalizedText, "Senior Engineer") {
		t.Fatalf("missing paragraph text: %q", parsed.NormalizedText)
	}
}

func TestParse_DOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/styles.xml"); err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if _, err := Parse(buf.Bytes(), "cv.docx"); err == nil {
		t.Fatal("expected error for docx without document.xml")
	}
}

func TestExtractSections(t *testing.T) {
	text := strings.Join([]string{
		"Contact Information",
		"jane@example.com",
		"Work Experience",
		"Acme Corp, 2020-2024",
		"Education",
		"BSc Computer Science",
		"Skills",
		"Go, Python, SQL",
	}, "\n")

	sections := extractSections(text)
	if !strings.Contains(sections["header"], "jane@example.com") {
		t.Fatalf("header section = %q", sections["header"])
	}
	if !strings.Contains(sections["experience"], "Acme Corp") {
		t.Fatalf("experience section = %q", sections["experience"])
	}
	if !strings.Contains(sections["education"], "BSc Computer Science") {
		t.Fatalf("education section = %q", sections["education"])
	}
	if !strings.Contains(sections["skills"], "Go, Python, SQL") {
		t.Fatalf("skills section = %q", sections["skills"])
	}
}

func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>")
		body.WriteString(p)
		body.WriteString("</w:t></w:r></w:p>")
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(body.String())); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
