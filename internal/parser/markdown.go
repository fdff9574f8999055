package parser

import (
	"bytes"
	"io"
	"strings"

	"docorganizer/internal/section"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*section.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	root := section.NewRoot()
	stack := newSectionStack(root)

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			stack.openSection(string(node.Text(src)), node.Level)

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			stack.current().AddContent(fenceCode(blockLines(n, src)))

		default:
			stack.current().AddContent(extractText(n, src))
		}
	}

	return &section.Document{Title: titleFromFilename(filename), Root: root}, nil
}

// blockLines returns the raw source lines of a block node.
func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

// extractText gets the text content of a goldmark AST node. Leaf blocks
// contribute their raw source lines; container blocks (lists, quotes)
// recurse into their children.
func extractText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return strings.TrimSpace(blockLines(n, src))
	}

	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if part := extractText(c, src); part != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(part)
		}
	}
	return strings.TrimSpace(buf.String())
}
