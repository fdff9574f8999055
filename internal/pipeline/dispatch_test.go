package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"docorganizer/internal/chunker"
	"docorganizer/internal/classify"
	"docorganizer/internal/section"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGateway classifies by echoing the input and failing on demand.
type fakeGateway struct {
	mu    sync.Mutex
	calls []classify.Input

	// failOn drops any input whose content contains the substring.
	failOn string
	// err overrides the default failure error.
	err error
}

func (g *fakeGateway) Classify(_ context.Context, in classify.Input) (*classify.Record, error) {
	g.mu.Lock()
	g.calls = append(g.calls, in)
	g.mu.Unlock()

	if g.failOn != "" && strings.Contains(in.Content, g.failOn) {
		if g.err != nil {
			return nil, g.err
		}
		return nil, &classify.Failure{Kind: classify.KindError, Detail: "induced failure"}
	}
	return &classify.Record{
		SectionType:      classify.TypeConcept,
		RelatedEndpoints: []string{},
		Filename:         classify.NormalizeFilename(in.Title, "section"),
		Content:          in.Content,
	}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// smallBudget forces chunking for multi-paragraph content: a 40-token window
// gives a 20-token chunk target, so 10-word paragraphs chunk one per piece.
func smallBudget() Config {
	return Config{
		Chunking:      chunker.Config{ContextTokens: 40},
		MaxChunkDepth: 3,
		CallTimeout:   time.Second,
		MaxConcurrent: 1,
	}
}

func repeatWord(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestProcess_DirectClassification(t *testing.T) {
	gw := &fakeGateway{}
	d := NewDispatcher(gw, DefaultConfig(), testLogger())

	fs := section.FlatSection{
		Title:       "Authentication",
		Content:     "## Authentication\n\nUse bearer tokens.",
		Breadcrumbs: []string{},
	}
	oc := d.Process(context.Background(), 0, fs)

	if oc.Dropped() {
		t.Fatalf("expected record, got error: %v", oc.Err)
	}
	if oc.Chunked {
		t.Error("small section should not be chunked")
	}
	if gw.callCount() != 1 {
		t.Errorf("expected 1 gateway call, got %d", gw.callCount())
	}
	if oc.Record.Content != fs.Content {
		t.Errorf("expected content passed through, got %q", oc.Record.Content)
	}
}

func TestProcess_OversizedSectionIsChunked(t *testing.T) {
	gw := &fakeGateway{}
	d := NewDispatcher(gw, smallBudget(), testLogger())

	content := strings.Join([]string{
		repeatWord("alpha", 10),
		repeatWord("beta", 10),
		repeatWord("gamma", 10),
	}, "\n\n")
	fs := section.FlatSection{Title: "Big Section", Content: content}

	oc := d.Process(context.Background(), 0, fs)

	if oc.Dropped() {
		t.Fatalf("expected merged record, got error: %v", oc.Err)
	}
	if !oc.Chunked {
		t.Fatal("expected section to be chunked")
	}
	if oc.ChunksTotal != 3 || oc.ChunksOK != 3 {
		t.Errorf("expected 3/3 chunks, got %d/%d", oc.ChunksOK, oc.ChunksTotal)
	}
	// Merged content must reproduce the original in order.
	if oc.Record.Content != content {
		t.Errorf("merged content does not reproduce input:\n%q\nwant:\n%q", oc.Record.Content, content)
	}
	// First chunk supplies the filename.
	if !strings.HasPrefix(oc.Record.Filename, "big-section") {
		t.Errorf("expected filename from first chunk, got %q", oc.Record.Filename)
	}
}

func TestProcess_FailedChunkIsDroppedAlone(t *testing.T) {
	gw := &fakeGateway{failOn: "beta"}
	d := NewDispatcher(gw, smallBudget(), testLogger())

	first := repeatWord("alpha", 10)
	second := repeatWord("beta", 10)
	third := repeatWord("gamma", 10)
	fs := section.FlatSection{
		Title:   "Partial",
		Content: first + "\n\n" + second + "\n\n" + third,
	}

	oc := d.Process(context.Background(), 0, fs)

	if oc.Dropped() {
		t.Fatalf("expected partial record, got error: %v", oc.Err)
	}
	if oc.ChunksTotal != 3 || oc.ChunksOK != 2 {
		t.Errorf("expected 2/3 chunks ok, got %d/%d", oc.ChunksOK, oc.ChunksTotal)
	}
	want := first + "\n\n" + third
	if oc.Record.Content != want {
		t.Errorf("expected surviving chunks merged in order:\n%q\nwant:\n%q", oc.Record.Content, want)
	}
}

func TestProcess_AllChunksFailedDropsSection(t *testing.T) {
	gw := &fakeGateway{failOn: " "}
	d := NewDispatcher(gw, smallBudget(), testLogger())

	fs := section.FlatSection{
		Title:   "Doomed",
		Content: repeatWord("alpha", 10) + "\n\n" + repeatWord("beta", 10),
	}

	oc := d.Process(context.Background(), 0, fs)

	if !oc.Dropped() {
		t.Fatal("expected section to be dropped")
	}
	var failure *classify.Failure
	if !errors.As(oc.Err, &failure) {
		t.Fatalf("expected classify.Failure, got %T: %v", oc.Err, oc.Err)
	}
}

func TestProcess_RefusalDropsSection(t *testing.T) {
	gw := &fakeGateway{
		failOn: "secret",
		err:    &classify.Failure{Kind: classify.KindRefusal, Detail: "cannot process"},
	}
	d := NewDispatcher(gw, DefaultConfig(), testLogger())

	fs := section.FlatSection{Title: "Risky", Content: "secret material"}
	oc := d.Process(context.Background(), 0, fs)

	if !oc.Dropped() {
		t.Fatal("expected refused section to be dropped")
	}
	if gw.callCount() != 1 {
		t.Errorf("refusal must not be retried, got %d calls", gw.callCount())
	}
}

func TestProcess_NonRetryableErrorNotRetried(t *testing.T) {
	gw := &fakeGateway{failOn: "bad", err: fmt.Errorf("invalid request")}
	d := NewDispatcher(gw, DefaultConfig(), testLogger())

	fs := section.FlatSection{Title: "Bad", Content: "bad input"}
	oc := d.Process(context.Background(), 0, fs)

	if !oc.Dropped() {
		t.Fatal("expected drop")
	}
	if gw.callCount() != 1 {
		t.Errorf("expected exactly 1 call for a permanent error, got %d", gw.callCount())
	}
}

func TestProcessAll_PreservesDocumentOrder(t *testing.T) {
	gw := &fakeGateway{}
	cfg := DefaultConfig()
	cfg.MaxConcurrent = 4
	d := NewDispatcher(gw, cfg, testLogger())

	var flats []section.FlatSection
	for i := range 8 {
		flats = append(flats, section.FlatSection{
			Title:   fmt.Sprintf("Section %d", i),
			Content: fmt.Sprintf("content %d", i),
		})
	}

	outcomes := d.ProcessAll(context.Background(), flats)

	if len(outcomes) != len(flats) {
		t.Fatalf("expected %d outcomes, got %d", len(flats), len(outcomes))
	}
	for i, oc := range outcomes {
		if oc.Title != flats[i].Title {
			t.Errorf("outcome %d: expected %q, got %q", i, flats[i].Title, oc.Title)
		}
		if oc.Dropped() {
			t.Errorf("outcome %d unexpectedly dropped: %v", i, oc.Err)
		}
	}
}

func TestProcessAll_FailureDoesNotAffectSiblings(t *testing.T) {
	gw := &fakeGateway{failOn: "poison"}
	cfg := DefaultConfig()
	cfg.MaxConcurrent = 2
	d := NewDispatcher(gw, cfg, testLogger())

	flats := []section.FlatSection{
		{Title: "A", Content: "fine"},
		{Title: "B", Content: "poison here"},
		{Title: "C", Content: "also fine"},
	}

	outcomes := d.ProcessAll(context.Background(), flats)

	if outcomes[0].Dropped() || outcomes[2].Dropped() {
		t.Error("siblings of a failed section must survive")
	}
	if !outcomes[1].Dropped() {
		t.Error("expected poisoned section to be dropped")
	}
}
