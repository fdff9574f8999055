package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"docorganizer/internal/chunker"
	"docorganizer/internal/classify"
	"docorganizer/internal/section"
)

// Config controls classification dispatch.
type Config struct {
	Chunking chunker.Config
	// MaxChunkDepth bounds recursive re-chunking. A unit at the depth limit
	// is classified as-is even if it still exceeds budget, so dispatch
	// always terminates.
	MaxChunkDepth int
	// CallTimeout bounds each gateway call.
	CallTimeout time.Duration
	// MaxConcurrent is the fan-out width for independent sections. 1 keeps
	// strict document-order processing.
	MaxConcurrent int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Chunking:      chunker.DefaultConfig(),
		MaxChunkDepth: 3,
		CallTimeout:   2 * time.Minute,
		MaxConcurrent: 1,
	}
}

// Outcome is the per-section result of classification dispatch. A dropped
// section carries Err and no Record; failures never propagate past this
// layer and never affect sibling sections.
type Outcome struct {
	Index  int
	Title  string
	Record *classify.Record
	Err    error

	Chunked     bool
	ChunksTotal int
	ChunksOK    int
}

// Dropped reports whether the section produced no record.
func (o Outcome) Dropped() bool {
	return o.Record == nil
}

// Dispatcher runs the per-section state machine:
// measure -> direct classify | chunk and recurse -> reassemble -> result or dropped.
type Dispatcher struct {
	gw  classify.Gateway
	cfg Config
	log *slog.Logger
}

func NewDispatcher(gw classify.Gateway, cfg Config, log *slog.Logger) *Dispatcher {
	if cfg.Chunking.ContextTokens <= 0 {
		cfg.Chunking = chunker.DefaultConfig()
	}
	if cfg.MaxChunkDepth <= 0 {
		cfg.MaxChunkDepth = 3
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 2 * time.Minute
	}
	return &Dispatcher{gw: gw, cfg: cfg, log: log}
}

// unit is one pending piece of work in the chunk queue.
type unit struct {
	in    classify.Input
	depth int
}

// Process classifies one flattened section, chunking it first when the
// rendered prompt exceeds the context budget.
func (d *Dispatcher) Process(ctx context.Context, idx int, fs section.FlatSection) Outcome {
	out := Outcome{Index: idx, Title: fs.Title}
	in := classify.Input{Title: fs.Title, Content: fs.Content, Breadcrumbs: fs.Breadcrumbs}

	if d.withinBudget(in) {
		rec, err := d.classifyWithRetry(ctx, in)
		if err != nil {
			d.log.Warn("section dropped", "section", fs.Title, "error", err)
			out.Err = err
			return out
		}
		out.Record = rec
		return out
	}

	out.Chunked = true
	queue := toUnits(chunker.Split(fs.Title, fs.Content, fs.Breadcrumbs, d.cfg.Chunking), 1)
	var records []*classify.Record

	// Iterative work queue: a unit still over budget is re-chunked in place,
	// preserving chunk order, until the depth bound is reached.
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		if u.depth < d.cfg.MaxChunkDepth && !d.withinBudget(u.in) {
			sub := toUnits(chunker.Split(u.in.Title, u.in.Content, u.in.Breadcrumbs, d.cfg.Chunking), u.depth+1)
			if len(sub) > 1 {
				queue = append(sub, queue...)
				continue
			}
		}

		out.ChunksTotal++
		rec, err := d.classifyWithRetry(ctx, u.in)
		if err != nil {
			// Partial coverage is accepted: a failed chunk is dropped alone.
			d.log.Warn("chunk dropped", "section", fs.Title, "chunk", u.in.Title, "error", err)
			continue
		}
		out.ChunksOK++
		records = append(records, rec)
	}

	if len(records) == 0 {
		out.Err = &classify.Failure{Kind: classify.KindError, Detail: "all chunks failed"}
		d.log.Warn("section dropped", "section", fs.Title, "chunks", out.ChunksTotal, "error", out.Err)
		return out
	}
	out.Record = MergeRecords(records)
	return out
}

// ProcessAll dispatches every flattened section and returns outcomes in
// document order. With MaxConcurrent > 1 the gateway calls fan out; sections
// are read-only and each outcome lands in its own slot, so no re-sorting is
// needed and one section's failure never cancels its siblings.
func (d *Dispatcher) ProcessAll(ctx context.Context, flats []section.FlatSection) []Outcome {
	return d.processAll(ctx, flats, nil)
}

// processAll is ProcessAll with an optional completion callback. notify, when
// non-nil, is called once per finished section with the running completion
// count; calls are serialized, but under fan-out completion order may differ
// from document order.
func (d *Dispatcher) processAll(ctx context.Context, flats []section.FlatSection, notify func(processed, total int, oc Outcome)) []Outcome {
	outcomes := make([]Outcome, len(flats))

	width := d.cfg.MaxConcurrent
	if width <= 1 {
		for i, fs := range flats {
			outcomes[i] = d.Process(ctx, i, fs)
			if notify != nil {
				notify(i+1, len(flats), outcomes[i])
			}
		}
		return outcomes
	}

	var mu sync.Mutex
	processed := 0
	sem := make(chan struct{}, width)
	done := make(chan int, len(flats))
	for i, fs := range flats {
		sem <- struct{}{}
		go func(i int, fs section.FlatSection) {
			defer func() { <-sem }()
			oc := d.Process(ctx, i, fs)
			outcomes[i] = oc
			if notify != nil {
				mu.Lock()
				processed++
				notify(processed, len(flats), oc)
				mu.Unlock()
			}
			done <- i
		}(i, fs)
	}
	for range flats {
		<-done
	}
	return outcomes
}

func (d *Dispatcher) withinBudget(in classify.Input) bool {
	return chunker.EstimateTokens(classify.BuildPrompt(in)) <= d.cfg.Chunking.ContextTokens
}

// classifyWithRetry performs one gateway call with a bounded timeout,
// retrying only transient transport errors.
func (d *Dispatcher) classifyWithRetry(ctx context.Context, in classify.Input) (*classify.Record, error) {
	var rec *classify.Record
	var err error
	for attempt := range MaxRetries {
		callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
		rec, err = d.gw.Classify(callCtx, in)
		cancel()
		if err == nil || !IsRetryable(err) {
			break
		}
		d.log.Warn("retryable classification error", "title", in.Title, "attempt", attempt, "error", err)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return rec, err
}

func toUnits(chunks []chunker.Chunk, depth int) []unit {
	units := make([]unit, 0, len(chunks))
	for _, c := range chunks {
		units = append(units, unit{
			in: classify.Input{
				Title:       c.Title,
				Content:     c.Content,
				Breadcrumbs: c.Breadcrumbs,
			},
			depth: depth,
		})
	}
	return units
}
