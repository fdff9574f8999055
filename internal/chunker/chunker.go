package chunker

import (
	"fmt"
	"strings"
)

// ParagraphSeparator delimits paragraphs: a paragraph is a maximal run of
// text containing no blank line.
const ParagraphSeparator = "\n\n"

// Config controls how an oversized section is reduced.
type Config struct {
	// ContextTokens is the classification backend's context-window ceiling.
	ContextTokens int
	// SplitOversized enables sentence-level splitting of a single paragraph
	// that alone exceeds ContextTokens. When off, such a paragraph is kept
	// intact and the gateway decides its fate.
	SplitOversized bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{ContextTokens: 8000}
}

// ChunkTokens is the accumulation threshold: half the context window,
// leaving headroom for prompt scaffolding and model output.
func (c Config) ChunkTokens() int {
	return c.ContextTokens / 2
}

// Chunk is one token-bounded piece of a section's content, taggable back to
// its parent section by title and breadcrumbs.
type Chunk struct {
	Title       string
	Content     string
	Breadcrumbs []string
	Ordinal     int // 1-based position within the parent section.
}

// Split reduces content into ordered chunks under the half-budget threshold.
// Paragraphs are accumulated greedily and never broken apart (unless
// SplitOversized rewrites one that alone exceeds the full budget). In the
// default mode, joining the chunk contents with ParagraphSeparator
// reproduces the input exactly.
func Split(title, content string, breadcrumbs []string, cfg Config) []Chunk {
	if cfg.ContextTokens <= 0 {
		cfg.ContextTokens = DefaultConfig().ContextTokens
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	paragraphs := strings.Split(content, ParagraphSeparator)
	if cfg.SplitOversized {
		paragraphs = splitOversized(paragraphs, cfg.ContextTokens)
	}

	target := cfg.ChunkTokens()
	var parts []string
	var current []string
	currentWords := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		parts = append(parts, strings.Join(current, ParagraphSeparator))
		current = nil
		currentWords = 0
	}

	// Accumulate by word count rather than per-paragraph token estimates:
	// joining paragraphs preserves the word count, so the emitted chunk's
	// token estimate never drifts past the threshold.
	for _, para := range paragraphs {
		words := len(strings.Fields(para))
		if len(current) > 0 && tokensForWords(currentWords+words) > target {
			flush()
		}
		current = append(current, para)
		currentWords += words
	}
	flush()

	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		n := i + 1
		crumbs := make([]string, 0, len(breadcrumbs)+1)
		crumbs = append(crumbs, breadcrumbs...)
		crumbs = append(crumbs, fmt.Sprintf("part %d", n))
		chunks = append(chunks, Chunk{
			Title:       fmt.Sprintf("%s (part %d)", title, n),
			Content:     part,
			Breadcrumbs: crumbs,
			Ordinal:     n,
		})
	}
	return chunks
}

// splitOversized replaces any paragraph exceeding the full context budget
// with sentence-grouped paragraphs under the half budget. This alters
// whitespace at the split points, trading the exact-coverage guarantee for
// classifiable pieces.
func splitOversized(paragraphs []string, contextTokens int) []string {
	target := contextTokens / 2
	var out []string
	for _, para := range paragraphs {
		if EstimateTokens(para) <= contextTokens {
			out = append(out, para)
			continue
		}
		var group []string
		groupWords := 0
		for _, sent := range splitSentences(para) {
			words := len(strings.Fields(sent))
			if len(group) > 0 && tokensForWords(groupWords+words) > target {
				out = append(out, strings.Join(group, " "))
				group = nil
				groupWords = 0
			}
			group = append(group, sent)
			groupWords += words
		}
		if len(group) > 0 {
			out = append(out, strings.Join(group, " "))
		}
	}
	return out
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}
