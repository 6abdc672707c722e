// Package jobs implements the batch job broker collaborator.
//
// Jobs are queued in memory. When a remote runner is configured, each
// submission is forwarded to it over HTTP with retries; otherwise jobs are
// executed in process by a timer that walks them through the JOBQ, ACTIVE
// and ENDED states, which is enough for the work-with screens to have
// something real to display.
package jobs

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/dk400/dk400/internal/collab"
	"github.com/dk400/dk400/internal/logging"
)

// Job status values.
const (
	StatusQueued = "JOBQ"
	StatusHeld   = "HELD"
	StatusActive = "ACTIVE"
	StatusEnded  = "ENDED"
)

// DefaultQueue receives submissions that name no queue.
const DefaultQueue = "QBATCH"

// Config controls the broker.
type Config struct {
	// RunnerURL is the remote runner endpoint. Empty runs jobs in process.
	RunnerURL string
	// RunnerTimeout bounds one submission call to the runner.
	RunnerTimeout time.Duration
	// ExecutionTime is how long an in-process job stays ACTIVE.
	ExecutionTime time.Duration
}

type queue struct {
	collab.Queue
}

// Broker is the in-memory job broker. It implements collab.Broker.
type Broker struct {
	mu      sync.Mutex
	jobs    map[string]*collab.Job
	queues  map[string]*queue
	startAt map[string]time.Time
	cfg     Config
	client  *retryablehttp.Client
	history collab.History
	log     *logging.Logger
}

// New creates a broker with the standard queues.
func New(cfg Config, history collab.History, log *logging.Logger) *Broker {
	if cfg.RunnerTimeout == 0 {
		cfg.RunnerTimeout = 15 * time.Second
	}
	if cfg.ExecutionTime == 0 {
		cfg.ExecutionTime = 5 * time.Second
	}

	b := &Broker{
		jobs:    make(map[string]*collab.Job),
		queues:  make(map[string]*queue),
		startAt: make(map[string]time.Time),
		cfg:     cfg,
		history: history,
		log:     log.Named("jobs"),
	}
	for _, name := range []string{DefaultQueue, "QPGMR"} {
		b.queues[name] = &queue{Queue: collab.Queue{Name: name, Status: "ACTIVE", Subsystem: "QBATCH"}}
	}

	if cfg.RunnerURL != "" {
		client := retryablehttp.NewClient()
		client.RetryMax = 3
		client.HTTPClient.Timeout = cfg.RunnerTimeout
		client.Logger = nil
		b.client = client
	}
	return b
}

// Submit queues a job, forwarding it to the remote runner when one is
// configured.
func (b *Broker) Submit(ctx context.Context, user, queueName, command string, delay time.Duration) (collab.Job, error) {
	if command == "" {
		return collab.Job{}, fmt.Errorf("%w: command is required", collab.ErrFailure)
	}
	if queueName == "" {
		queueName = DefaultQueue
	}

	b.mu.Lock()
	q, ok := b.queues[queueName]
	if !ok {
		b.mu.Unlock()
		return collab.Job{}, fmt.Errorf("%w: job queue %s not found", collab.ErrFailure, queueName)
	}

	job := &collab.Job{
		ID:        uuid.New().String(),
		Name:      jobName(command),
		User:      user,
		Queue:     queueName,
		Status:    StatusQueued,
		Command:   command,
		Submitted: time.Now(),
	}
	b.jobs[job.ID] = job
	b.startAt[job.ID] = time.Now().Add(delay)
	q.Jobs++
	b.mu.Unlock()

	if b.client != nil {
		if err := b.forward(ctx, job); err != nil {
			b.mu.Lock()
			delete(b.jobs, job.ID)
			q.Jobs--
			b.mu.Unlock()
			return collab.Job{}, fmt.Errorf("%w: runner unavailable: %v", collab.ErrFailure, err)
		}
	} else {
		b.runLocally(job.ID, delay)
	}

	b.log.Info("job submitted",
		zap.String("job_id", job.ID),
		zap.String("job_name", job.Name),
		zap.String("queue", queueName),
		zap.String("user", user))
	b.record("INFO", fmt.Sprintf("Job %s submitted to %s by %s", job.Name, queueName, user))
	return *job, nil
}

// forward posts the job to the remote runner.
func (b *Broker) forward(ctx context.Context, job *collab.Job) error {
	body, err := sonic.Marshal(map[string]string{
		"id":      job.ID,
		"name":    job.Name,
		"user":    job.User,
		"queue":   job.Queue,
		"command": job.Command,
	})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", b.cfg.RunnerURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("runner returned %d", resp.StatusCode)
	}
	return nil
}

// runLocally arms the scheduled start for an in-process job.
func (b *Broker) runLocally(jobID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		b.start(jobID)
	})
}

// start moves a queued job to ACTIVE and arms its end timer. A job that is
// held, in a held queue, or already past JOBQ is left alone; releasing it
// later re-enters here through startDue.
func (b *Broker) start(jobID string) {
	if b.transition(jobID, StatusQueued, StatusActive) {
		time.AfterFunc(b.cfg.ExecutionTime, func() {
			b.transition(jobID, StatusActive, StatusEnded)
		})
	}
}

// startDue starts a locally-run job whose scheduled start time already
// passed while it was held; the one-shot start timer fired into the hold
// and will not come back.
func (b *Broker) startDue(jobID string) {
	if b.client != nil {
		return
	}
	b.mu.Lock()
	due, ok := b.startAt[jobID]
	b.mu.Unlock()
	if ok && !time.Now().Before(due) {
		b.start(jobID)
	}
}

func (b *Broker) transition(jobID, from, to string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	job, ok := b.jobs[jobID]
	if !ok || job.Status != from {
		return false
	}
	if q, ok := b.queues[job.Queue]; ok && q.Status == "HELD" && to == StatusActive {
		return false
	}
	job.Status = to
	if q, ok := b.queues[job.Queue]; ok && to == StatusActive {
		q.Jobs--
	}
	return true
}

// Jobs lists all known jobs, newest first.
func (b *Broker) Jobs(_ context.Context) ([]collab.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]collab.Job, 0, len(b.jobs))
	for _, j := range b.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Submitted.After(out[j].Submitted) })
	return out, nil
}

// Queues lists the job queues.
func (b *Broker) Queues(_ context.Context) ([]collab.Queue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]collab.Queue, 0, len(b.queues))
	for _, q := range b.queues {
		held := 0
		for _, j := range b.jobs {
			if j.Queue == q.Name && j.Status == StatusHeld {
				held++
			}
		}
		c := q.Queue
		c.Held = held
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Hold parks a queued job.
func (b *Broker) Hold(_ context.Context, jobID string) error {
	if b.setStatus(jobID, StatusQueued, StatusHeld) {
		return nil
	}
	return fmt.Errorf("%w: job not found or not holdable", collab.ErrFailure)
}

// Release returns a held job to the queue, restarting it if its
// scheduled start came and went during the hold.
func (b *Broker) Release(_ context.Context, jobID string) error {
	if b.setStatus(jobID, StatusHeld, StatusQueued) {
		b.startDue(jobID)
		return nil
	}
	return fmt.Errorf("%w: job not found or not held", collab.ErrFailure)
}

// End terminates a job in any non-ended state.
func (b *Broker) End(_ context.Context, jobID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	job, ok := b.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: job not found", collab.ErrFailure)
	}
	if job.Status == StatusEnded {
		return fmt.Errorf("%w: job already ended", collab.ErrFailure)
	}
	if q, ok := b.queues[job.Queue]; ok && (job.Status == StatusQueued || job.Status == StatusHeld) {
		q.Jobs--
	}
	job.Status = StatusEnded
	b.record("INFO", fmt.Sprintf("Job %s end requested", job.Name))
	return nil
}

// HoldQueue holds a whole queue; queued jobs stop starting.
func (b *Broker) HoldQueue(_ context.Context, name string) error {
	return b.setQueueStatus(name, "HELD")
}

// ReleaseQueue releases a held queue and restarts any queued jobs whose
// start timers fired into the hold.
func (b *Broker) ReleaseQueue(_ context.Context, name string) error {
	if err := b.setQueueStatus(name, "ACTIVE"); err != nil {
		return err
	}
	if b.client != nil {
		return nil
	}

	b.mu.Lock()
	var due []string
	now := time.Now()
	for id, j := range b.jobs {
		if j.Queue == name && j.Status == StatusQueued && !now.Before(b.startAt[id]) {
			due = append(due, id)
		}
	}
	b.mu.Unlock()

	for _, id := range due {
		b.start(id)
	}
	return nil
}

func (b *Broker) setQueueStatus(name, status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[name]
	if !ok {
		return fmt.Errorf("%w: job queue %s not found", collab.ErrFailure, name)
	}
	q.Status = status
	return nil
}

func (b *Broker) setStatus(jobID, from, to string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	job, ok := b.jobs[jobID]
	if !ok || job.Status != from {
		return false
	}
	job.Status = to
	return true
}

func (b *Broker) record(severity, message string) {
	if b.history != nil {
		b.history.Record(severity, "QBATCH", message)
	}
}

// jobName derives an AS/400-style job name from the command: the first
// word, uppercased and clipped to ten characters.
func jobName(command string) string {
	name := command
	for i, r := range command {
		if r == ' ' {
			name = command[:i]
			break
		}
	}
	if len(name) > 10 {
		name = name[:10]
	}
	upper := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}
	return string(upper)
}
