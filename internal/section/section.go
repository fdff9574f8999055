package section

import "strings"

// Document is a parsed input document: a display title plus the section tree.
type Document struct {
	Title string   // From document metadata or the filename.
	Root  *Section // Synthetic level-0 root; never emitted itself.
}

// Section is a titled region of a document rooted at a heading. It owns its
// content blocks and its subsections; the parent back-reference exists only
// for breadcrumb computation. The synthetic root has level 0 and no title.
type Section struct {
	Title    string
	Level    int        // h1=1 .. h6=6; 0 for the root.
	Content  []string   // Non-heading blocks in document order.
	Children []*Section // Direct subsections in document order.

	parent *Section
}

// NewRoot returns the synthetic level-0 root of a fresh tree.
func NewRoot() *Section {
	return &Section{}
}

// AddChild attaches c as the last subsection of s.
func (s *Section) AddChild(c *Section) {
	c.parent = s
	s.Children = append(s.Children, c)
}

// AddContent appends one content block. Blank blocks are ignored.
func (s *Section) AddContent(block string) {
	if strings.TrimSpace(block) == "" {
		return
	}
	s.Content = append(s.Content, block)
}

// Parent returns the owning section, or nil for the root.
func (s *Section) Parent() *Section {
	return s.parent
}

// Breadcrumbs walks the parent chain and returns ancestor titles from the
// root's child down to s itself. The root is excluded.
func (s *Section) Breadcrumbs() []string {
	var crumbs []string
	for cur := s; cur != nil && cur.parent != nil; cur = cur.parent {
		crumbs = append(crumbs, cur.Title)
	}
	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}
	return crumbs
}

// FullContent renders the section and its whole subtree in document order:
// a Markdown heading marker, the section's own blocks, then every subsection
// recursively, all joined by single blank lines.
func (s *Section) FullContent() string {
	var parts []string
	if s.Level > 0 && s.Title != "" {
		parts = append(parts, strings.Repeat("#", s.Level)+" "+s.Title)
	}
	parts = append(parts, s.Content...)
	for _, c := range s.Children {
		parts = append(parts, c.FullContent())
	}
	return strings.Join(parts, "\n\n")
}

// hasBody reports whether s or any descendant carries content blocks.
func (s *Section) hasBody() bool {
	if len(s.Content) > 0 {
		return true
	}
	for _, c := range s.Children {
		if c.hasBody() {
			return true
		}
	}
	return false
}

// FlatSection is a self-contained, read-only snapshot of one section: its
// fully rendered content (own blocks plus all descendants) and its location
// in the document hierarchy. It does not outlive one processing pass.
type FlatSection struct {
	Title       string
	Content     string
	Breadcrumbs []string
}

// Flatten visits the tree depth-first, pre-order, excluding the synthetic
// root. Untitled sections and sections with no renderable body anywhere in
// their subtree are skipped so that empty artifacts are never emitted.
// Flattening the same tree twice yields identical output.
func Flatten(root *Section) []FlatSection {
	if root == nil {
		return nil
	}
	var out []FlatSection
	var walk func(*Section)
	walk = func(s *Section) {
		if s.Title != "" && s.hasBody() {
			out = append(out, FlatSection{
				Title:       s.Title,
				Content:     s.FullContent(),
				Breadcrumbs: s.Breadcrumbs(),
			})
		}
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, c := range root.Children {
		walk(c)
	}
	return out
}
