package classify

import (
	"fmt"
	"regexp"
	"strings"
)

var validSectionTypes = map[SectionType]bool{
	TypeEndpoint: true,
	TypeConcept:  true,
	TypeOverview: true,
	TypeOther:    true,
}

// ValidateRecord checks a gateway record and normalizes its filename in
// place. fallbackTitle seeds the filename when the model returned an
// unusable one.
func ValidateRecord(r *Record, fallbackTitle string) error {
	if r == nil {
		return &Failure{Kind: KindError, Detail: "empty record"}
	}
	if !validSectionTypes[r.SectionType] {
		return &Failure{Kind: KindError, Detail: fmt.Sprintf("invalid section_type %q", r.SectionType)}
	}
	if strings.TrimSpace(r.Content) == "" {
		return &Failure{Kind: KindError, Detail: "empty content"}
	}
	r.Filename = NormalizeFilename(r.Filename, fallbackTitle)
	if r.RelatedEndpoints == nil {
		r.RelatedEndpoints = []string{}
	}
	return nil
}

// NormalizeFilename produces a URL-safe, lowercase, hyphenated filename
// ending in .md.
func NormalizeFilename(name, fallback string) string {
	slug := Slugify(strings.TrimSuffix(strings.TrimSpace(name), ".md"))
	if slug == "" {
		slug = Slugify(fallback)
	}
	if slug == "" {
		slug = "section"
	}
	return slug + ".md"
}

var (
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL/path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalidRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}
