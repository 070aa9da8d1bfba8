package api

import (
	"context"
	"log"
	"sync"
	"time"

	"upwork-proposals/internal/storage"
)

const (
	editQueueSize     = 100
	alertQueueSize    = 20
	editWriteTimeout  = 10 * time.Second
	defaultAlertDelay = time.Second
)

// EditStore persists proposal edit records.
type EditStore interface {
	InsertProposalEdit(ctx context.Context, e *storage.ProposalEdit) error
}

// JobNotifier delivers one job alert.
type JobNotifier interface {
	NotifyJob(job storage.Job) error
}

// EditJob represents a background write of a proposal edit record
type EditJob struct {
	Edit      storage.ProposalEdit
	Timestamp time.Time
}

// AlertJob represents a background job alert
type AlertJob struct {
	Job       storage.Job
	Timestamp time.Time
}

// BackgroundWorkers owns the queues for writes and notifications that must not slow
// down a request. Sends never block: a full queue drops the item and logs it.
type BackgroundWorkers struct {
	edits    EditStore
	notifier JobNotifier

	editQueue  chan EditJob
	alertQueue chan AlertJob
	alertDelay time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewBackgroundWorkers builds the queues. notifier may be nil, in which case alerts are ignored.
func NewBackgroundWorkers(edits EditStore, notifier JobNotifier) *BackgroundWorkers {
	return &BackgroundWorkers{
		edits:      edits,
		notifier:   notifier,
		editQueue:  make(chan EditJob, editQueueSize),   // Buffer for 100 edit records
		alertQueue: make(chan AlertJob, alertQueueSize), // Buffer for 20 job alerts
		alertDelay: defaultAlertDelay,
	}
}

// Start initializes background job workers
func (b *BackgroundWorkers) Start() {
	b.wg.Add(2)
	go b.editWorker()
	go b.alertWorker()

	log.Println("[BackgroundJobs] Workers started (edit records + job alerts)")
}

// Stop closes the queues and waits until they are drained or ctx is done.
func (b *BackgroundWorkers) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.editQueue)
		close(b.alertQueue)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Println("[BackgroundJobs] Queues drained")
		return nil
	case <-ctx.Done():
		log.Printf("[BackgroundJobs] Stopped before queues were drained: %v", ctx.Err())
		return ctx.Err()
	}
}

// RecordEdit queues an edit record for storage.
func (b *BackgroundWorkers) RecordEdit(edit storage.ProposalEdit) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		log.Printf("[BackgroundJobs] Shutting down, dropping edit record for job %s", edit.JobID)
		return
	}

	// Non-blocking send
	select {
	case b.editQueue <- EditJob{Edit: edit, Timestamp: time.Now()}:
		log.Printf("[BackgroundJobs] Queued edit record for job %s (%v)", edit.JobID, edit.Patterns)
	default:
		log.Printf("[BackgroundJobs] Queue full! Dropping edit record for job %s", edit.JobID)
	}
}

// AlertJobs queues one alert per job.
func (b *BackgroundWorkers) AlertJobs(jobs []storage.Job) {
	if b.notifier == nil || len(jobs) == 0 {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	queued := 0
	for _, job := range jobs {
		select {
		case b.alertQueue <- AlertJob{Job: job, Timestamp: time.Now()}:
			queued++
		default:
			log.Printf("[BackgroundJobs] Queue full! Dropping alert for job %s", job.ID)
		}
	}
	log.Printf("[BackgroundJobs] Queued %d/%d job alerts", queued, len(jobs))
}

// editWorker writes edit records from the queue
func (b *BackgroundWorkers) editWorker() {
	defer b.wg.Done()
	log.Println("[EditWorker] Started")

	for job := range b.editQueue {
		ctx, cancel := context.WithTimeout(context.Background(), editWriteTimeout)
		edit := job.Edit
		if err := b.edits.InsertProposalEdit(ctx, &edit); err != nil {
			log.Printf("[EditWorker] Failed to store edit for job %s: %v", edit.JobID, err)
		} else {
			log.Printf("[EditWorker] Stored edit for job %s (queued %v ago)", edit.JobID, time.Since(job.Timestamp))
		}
		cancel()
	}
}

// alertWorker sends job alerts from the queue, spaced out to respect the Bot API rate limit
func (b *BackgroundWorkers) alertWorker() {
	defer b.wg.Done()
	log.Println("[AlertWorker] Started")

	first := true
	for job := range b.alertQueue {
		if !first {
			time.Sleep(b.alertDelay)
		}
		first = false
		if err := b.notifier.NotifyJob(job.Job); err != nil {
			log.Printf("[AlertWorker] Failed to send alert for job %s: %v", job.Job.ID, err)
			continue
		}
		log.Printf("[AlertWorker] Sent alert for job %s", job.Job.ID)
	}
}
