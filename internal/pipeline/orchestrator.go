package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"docorganizer/internal/chunker"
	"docorganizer/internal/classify"
	"docorganizer/internal/config"
	"docorganizer/internal/emit"
)

// Orchestrator manages the document organization worker pool.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	gw    classify.Gateway
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator wires the pool; call Start to launch workers.
func NewOrchestrator(cfg config.Config, gw classify.Gateway, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		gw:    gw,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines and the job store cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pool.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// process runs one job end to end: parse and flatten, classify each section,
// emit the classified files under a per-document output directory.
func (o *Orchestrator) process(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID, "doc_id", job.DocID)

	job.SetStatus(StatusParsing, "parsing")

	outDir := filepath.Join(o.cfg.OutputDir, job.DocID)
	out, err := emit.NewWriter(outDir, log)
	if err != nil {
		log.Error("output directory setup failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetOutputDir(outDir)

	runner := NewRunner(o.gw, Config{
		Chunking: chunker.Config{
			ContextTokens:  o.cfg.ContextTokens,
			SplitOversized: o.cfg.SplitOversized,
		},
		MaxChunkDepth: o.cfg.MaxChunkDepth,
		CallTimeout:   o.cfg.ClassifyTimeout,
		MaxConcurrent: o.cfg.MaxConcurrentClassify,
	}, log)

	runner.OnProgress = func(processed, total int, oc Outcome) {
		if processed == 1 {
			job.SetStatus(StatusClassifying, "classifying")
			job.SetSectionsTotal(total)
		}
		job.SectionDone(oc.Dropped())
		if oc.Err != nil {
			job.AddError(fmt.Sprintf("%s: %s", oc.Title, oc.Err))
		}
	}

	rep, err := runner.Run(ctx, bytes.NewReader(job.FileData()), job.Filename, out)
	if err != nil {
		log.Error("run failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	job.SetStatus(StatusWriting, "writing")
	job.SetReport(rep)

	switch {
	case rep.Classified == 0 && rep.Dropped > 0:
		job.SetStatus(StatusFailed, "done")
	case rep.Dropped > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("job finished",
		"status", job.Snapshot().Status,
		"sections", rep.SectionsFound,
		"classified", rep.Classified,
		"dropped", rep.Dropped,
	)
}
