package pipeline

import (
	"strings"

	"docorganizer/internal/classify"
)

// MergeRecords folds per-chunk records back into a single record for the
// original section. The first record supplies section_type and filename,
// contents concatenate in chunk order separated by a blank line, and
// related endpoints are unioned without duplicates (first-seen order).
func MergeRecords(records []*classify.Record) *classify.Record {
	if len(records) == 0 {
		return nil
	}

	merged := &classify.Record{
		SectionType:      records[0].SectionType,
		Filename:         records[0].Filename,
		RelatedEndpoints: []string{},
	}

	seen := make(map[string]bool)
	var contents []string
	for _, r := range records {
		if r == nil {
			continue
		}
		if strings.TrimSpace(r.Content) != "" {
			contents = append(contents, r.Content)
		}
		for _, ep := range r.RelatedEndpoints {
			if ep == "" || seen[ep] {
				continue
			}
			seen[ep] = true
			merged.RelatedEndpoints = append(merged.RelatedEndpoints, ep)
		}
	}
	merged.Content = strings.Join(contents, "\n\n")
	return merged
}
