package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"docorganizer/internal/section"
)

// Parser converts raw document bytes into a section tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*section.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".docx":     true,
	".pdf":      true,
	".txt":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: true}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// sectionStack tracks the currently open section at each heading level while
// a parser walks a flat element stream. A new heading closes every open
// section at an equal or deeper level; the new section attaches to the
// nearest still-open section of strictly smaller level (the root if none),
// so an h4 directly following an h1 becomes that h1's child.
type sectionStack struct {
	open []*section.Section // open[0] is the root; deeper entries have strictly increasing levels.
}

func newSectionStack(root *section.Section) *sectionStack {
	return &sectionStack{open: []*section.Section{root}}
}

// openSection starts a new section at the given heading level and returns it.
func (st *sectionStack) openSection(title string, level int) *section.Section {
	for len(st.open) > 1 && st.open[len(st.open)-1].Level >= level {
		st.open = st.open[:len(st.open)-1]
	}
	s := &section.Section{Title: title, Level: level}
	st.open[len(st.open)-1].AddChild(s)
	st.open = append(st.open, s)
	return s
}

// current returns the deepest still-open section. Before the first heading
// this is the root, whose content is never emitted.
func (st *sectionStack) current() *section.Section {
	return st.open[len(st.open)-1]
}

// titleFromFilename strips the extension for use as a document title.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fenceCode wraps raw code text as a fenced Markdown block.
func fenceCode(code string) string {
	code = strings.Trim(code, "\n")
	if code == "" {
		return ""
	}
	return "```\n" + code + "\n```"
}
