package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Observer is told the outcome of every processed job.
type Observer func(jobType, outcome string)

type WorkerPool struct {
	repo        Store
	handlers    map[string]Handler
	logger      *slog.Logger
	workerCount int
	observe     Observer
	idle        time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewWorkerPool(repo Store, handlers map[string]Handler, logger *slog.Logger, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		repo:        repo,
		handlers:    handlers,
		logger:      logger,
		workerCount: workerCount,
		observe:     func(string, string) {},
		idle:        500 * time.Millisecond,
		stop:        make(chan struct{}),
	}
}

// SetObserver installs a callback for job outcomes. Call before Start.
func (p *WorkerPool) SetObserver(o Observer) {
	if o != nil {
		p.observe = o
	}
}

// Start launches the worker goroutines
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals workers to stop and waits for them
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

func (p *WorkerPool) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.stop:
		return false
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			p.logger.Debug("worker stopping", "id", id)
			return
		case <-ctx.Done():
			p.logger.Debug("context canceled, worker exiting", "id", id)
			return
		default:
		}

		job, err := p.repo.FetchNext(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Error("fetch job", "err", err)
			}
			if !p.sleep(ctx, time.Second) {
				return
			}
			continue
		}
		if job == nil {
			if !p.sleep(ctx, p.idle) {
				return
			}
			continue
		}
		p.process(ctx, job)
	}
}

func (p *WorkerPool) process(ctx context.Context, job *Job) {
	// outcomes are recorded even when shutdown cancelled ctx mid-job
	store := context.WithoutCancel(ctx)

	h, ok := p.handlers[job.Type]
	if !ok {
		job.Status = "failed"
		job.LastError = "no handler"
		if err := p.repo.MoveToDeadLetter(store, job); err != nil {
			p.logger.Error("move to dead letter", "err", err)
		}
		p.observe(job.Type, "dead")
		return
	}

	err := h(ctx, job)
	if err == nil {
		job.Status = "done"
		if upErr := p.repo.UpdateJob(store, job); upErr != nil {
			p.logger.Error("update job", "id", job.ID, "err", upErr)
		}
		p.observe(job.Type, "done")
		return
	}

	if ctx.Err() != nil {
		// interrupted by shutdown: hand it back without spending an attempt
		job.Status = "retry"
		job.NextTryAt = nil
		job.LastError = "interrupted: " + err.Error()
		if upErr := p.repo.UpdateJob(store, job); upErr != nil {
			p.logger.Error("requeue interrupted job", "id", job.ID, "err", upErr)
		}
		p.logger.Info("job interrupted, requeued", "id", job.ID, "type", job.Type)
		p.observe(job.Type, "interrupted")
		return
	}

	job.Attempts++
	job.LastError = err.Error()
	p.logger.Warn("job failed", "id", job.ID, "type", job.Type, "attempt", job.Attempts, "err", err)
	if job.Attempts >= job.MaxAttempts || errors.Is(err, ErrPermanent) {
		job.Status = "failed"
		if mvErr := p.repo.MoveToDeadLetter(store, job); mvErr != nil {
			p.logger.Error("move to dead letter", "err", mvErr)
		}
		p.observe(job.Type, "dead")
		return
	}
	t := time.Now().Add(BackoffDuration(job.Attempts))
	job.NextTryAt = &t
	job.Status = "retry"
	if upErr := p.repo.UpdateJob(store, job); upErr != nil {
		p.logger.Error("update job for retry", "err", upErr)
	}
	p.observe(job.Type, "retry")
}

// Enqueue convenience helper that creates a job and persists it
func (p *WorkerPool) Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	j := &Job{Type: typ, Payload: b, Priority: priority, MaxAttempts: maxAttempts, ScheduledAt: time.Now()}
	return p.repo.Enqueue(ctx, j)
}
