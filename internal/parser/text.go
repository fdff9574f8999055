package parser

import (
	"bufio"
	"io"
	"strings"

	"docorganizer/internal/section"
)

// TextParser handles plain text files. Plain text has no headings, so all
// paragraphs land on the synthetic root: the document flattens to nothing
// and is reported as degenerate rather than failing.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*section.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	root := section.NewRoot()
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			root.AddContent(current.String())
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &section.Document{Title: titleFromFilename(filename), Root: root}, nil
}
