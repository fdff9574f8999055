package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"docorganizer/internal/classify"
	"docorganizer/internal/emit"
	"docorganizer/internal/parser"
	"docorganizer/internal/section"
)

// Report summarizes one document run: the run always completes and accounts
// for every discovered section, classified or dropped.
type Report struct {
	Title         string   `json:"title"`
	SectionsFound int      `json:"sections_found"`
	Classified    int      `json:"classified"`
	Dropped       int      `json:"dropped"`
	FilesWritten  []string `json:"files_written"`
	Collisions    int      `json:"collisions"`
	Errors        []string `json:"errors,omitempty"`
}

// Runner drives the full pipeline for one document:
// parse -> flatten -> classify each section -> emit.
type Runner struct {
	disp *Dispatcher
	log  *slog.Logger

	// OnProgress, when set, is called after each section's outcome with the
	// running processed count. Calls are serialized; with MaxConcurrent > 1
	// they may arrive out of document order.
	OnProgress func(processed, total int, oc Outcome)
}

func NewRunner(gw classify.Gateway, cfg Config, log *slog.Logger) *Runner {
	return &Runner{
		disp: NewDispatcher(gw, cfg, log),
		log:  log,
	}
}

// Run processes one document read from r and writes classified sections
// through out. Per-section failures are recorded in the report and never
// abort the run; only parse failures and context cancellation return errors.
func (r *Runner) Run(ctx context.Context, in io.Reader, filename string, out *emit.Writer) (*Report, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(in, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	flats := section.Flatten(doc.Root)
	report := &Report{Title: doc.Title, SectionsFound: len(flats)}
	r.log.Info("document flattened", "file", filename, "title", doc.Title, "sections", len(flats))

	if len(flats) == 0 {
		// Degenerate document: nothing to classify, not an error.
		r.log.Warn("no sections found", "file", filename)
		return report, nil
	}

	outcomes := r.disp.processAll(ctx, flats, r.OnProgress)

	for _, oc := range outcomes {
		if oc.Dropped() {
			report.Dropped++
			if oc.Err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", oc.Title, oc.Err))
			}
			continue
		}
		report.Classified++

		relPath, collided, err := out.Write(oc.Record)
		if err != nil {
			r.log.Error("emit failed", "section", oc.Title, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", oc.Title, err))
			continue
		}
		if collided {
			report.Collisions++
		}
		report.FilesWritten = append(report.FilesWritten, relPath)
	}

	r.log.Info("document organized",
		"file", filename,
		"sections", report.SectionsFound,
		"classified", report.Classified,
		"dropped", report.Dropped,
		"files", len(report.FilesWritten),
	)
	return report, nil
}
