package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"docorganizer/internal/section"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. PDFs carry no heading markup, so each page
// becomes a level-1 section. It tries the Go library first, then falls back
// to pdftotext if available.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*section.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docorganizer-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return &section.Document{Title: titleFromFilename(filename), Root: pageTree(text)}, nil
}

// pageTree builds one level-1 section per form-feed-separated page. Empty
// pages are skipped but still advance the page number.
func pageTree(text string) *section.Section {
	root := section.NewRoot()
	for i, page := range strings.Split(text, "\f") {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		s := &section.Section{Title: fmt.Sprintf("Page %d", i+1), Level: 1}
		for _, para := range strings.Split(page, "\n\n") {
			s.AddContent(strings.TrimSpace(para))
		}
		root.AddChild(s)
	}
	return root
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		// The separator is written even for unreadable pages so page numbers
		// stay aligned with the source document.
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
