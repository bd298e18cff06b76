package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "cv-analyzer/pkg/errors"
)

// ParsedCV is the extraction result for one document.
type ParsedCV struct {
	RawText        string
	NormalizedText string
	Sections       map[string]string
	Filename       string
}

// Parse extracts text from a CV file. The file type is taken from the
// filename extension; pdf, docx and txt are supported.
func Parse(data []byte, filename string) (*ParsedCV, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = parsePDF(data)
	case ".docx":
		text, err = parseDOCX(data)
	case ".txt":
		text = string(data)
	default:
		return nil, apperrors.NewError(apperrors.ErrValidation.Code,
			fmt.Sprintf("unsupported file type: %s", ext), http.StatusBadRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s text: %w", strings.TrimPrefix(ext, "."), err)
	}

	normalized := normalizeText(text)
	return &ParsedCV{
		RawText:        text,
		NormalizedText: normalized,
		Sections:       extractSections(normalized),
		Filename:       filename,
	}, nil
}

func parsePDF(data []byte) (text string, err error) {
	// The pdf library panics on malformed files instead of returning an
	// error; turn that into a parse error so one bad upload cannot take
	// the caller down.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// parseDOCX pulls paragraph text out of word/document.xml. A docx file is a
// zip archive; the main document part holds runs of <w:t> text nodes grouped
// into <w:p> paragraphs.
func parseDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx missing word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		out    strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(el)
			}
		}
	}
	return out.String(), nil
}

// normalizeText strips blank lines and surrounding whitespace.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			normalized = append(normalized, line)
		}
	}
	return strings.Join(normalized, "\n")
}

var sectionKeywords = map[string][]string{
	"experience": {"experience", "work", "employment"},
	"education":  {"education", "academic", "degree"},
	"skills":     {"skills", "competencies", "technologies"},
	"header":     {"name", "email", "phone", "contact"},
}

// extractSections splits the text into coarse CV sections on keyword lines.
func extractSections(text string) map[string]string {
	sections := map[string]string{
		"header":     "",
		"experience": "",
		"education":  "",
		"skills":     "",
		"other":      "",
	}

	current := "other"
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if name, ok := matchSection(lower); ok {
			current = name
			continue
		}
		sections[current] += line + "\n"
	}
	return sections
}

func matchSection(line string) (string, bool) {
	for _, name := range []string{"experience", "education", "skills", "header"} {
		for _, kw := range sectionKeywords[name] {
			if strings.Contains(line, kw) {
				return name, true
			}
		}
	}
	return "", false
}
