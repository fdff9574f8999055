package classify

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every classification call.
const SystemPrompt = "You are an API documentation expert."

const classifyInstructions = `Analyze the following documentation section and provide a structured breakdown.

Format your response as a single JSON object with these exact fields:

- "section_type": one of "endpoint", "concept", "overview", "other".
  Use "endpoint" for API endpoint documentation, "concept" for explanatory
  content about concepts, "overview" for introductory or high-level content,
  and "other" for anything else.

- "related_endpoints": a list of strings containing any API endpoints
  mentioned in the content. Use an empty list if none are found.

- "filename": a URL-safe filename ending in .md. Convert spaces to hyphens,
  remove special characters, use lowercase.

- "content": the section content converted to well-formatted Markdown, with
  proper heading hierarchy and code block formatting.

Respond with ONLY the JSON object, no other text.`

// BuildPrompt creates the full user prompt for classifying a section,
// including its title and breadcrumb context.
func BuildPrompt(in Input) string {
	var sb strings.Builder
	sb.WriteString(classifyInstructions)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Title: %q\n", in.Title))
	if len(in.Breadcrumbs) > 0 {
		sb.WriteString("Section path: ")
		sb.WriteString(strings.Join(in.Breadcrumbs, " > "))
		sb.WriteString("\n")
	}
	sb.WriteString("---\n")
	sb.WriteString(in.Content)
	return sb.String()
}
