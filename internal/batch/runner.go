package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront-imagery/internal/artifacts"
	"storefront-imagery/internal/imaging"
)

// Job states.
const (
	StateQueued    = "queued"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateSkipped   = "skipped"
)

// Synthesizer produces one artifact per request. *imaging.Synthesizer and
// the gRPC client both satisfy it.
type Synthesizer interface {
	Synthesize(ctx context.Context, req imaging.Request) (*imaging.Artifact, error)
}

// Saver persists artifacts. *artifacts.Store satisfies it.
type Saver interface {
	Save(kind artifacts.Kind, name string, data []byte) (string, error)
}

// Batch is a product list to render into one artifact kind.
type Batch struct {
	Kind    artifacts.Kind
	Items   []Item
	Delay   time.Duration
	Width   int
	Height  int
	Quality int
	Format  imaging.Format
}

// ItemState tracks one product of a job.
type ItemState struct {
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	State       string `json:"state"`
	Path        string `json:"path,omitempty"`
	Color       string `json:"color,omitempty"`
	Error       string `json:"error,omitempty"`
}

type Job struct {
	ID        string         `json:"id"`
	State     string         `json:"state"`
	Message   string         `json:"message,omitempty"`
	Kind      artifacts.Kind `json:"kind"`
	Progress  float64        `json:"progress"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Items     []ItemState    `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (j *Job) clone() Job {
	c := *j
	c.Items = append([]ItemState(nil), j.Items...)
	return c
}

// Done reports whether the job reached a terminal state.
func (j Job) Done() bool {
	return j.State == StateCompleted || j.State == StateFailed
}

type Runner struct {
	mu          sync.Mutex
	jobs        map[string]*Job
	synth       Synthesizer
	store       Saver
	logger      *zap.Logger
	itemTimeout time.Duration
}

func NewRunner(synth Synthesizer, store Saver, logger *zap.Logger, itemTimeout time.Duration) *Runner {
	if itemTimeout <= 0 {
		itemTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		jobs:        make(map[string]*Job),
		synth:       synth,
		store:       store,
		logger:      logger,
		itemTimeout: itemTimeout,
	}
}

// Submit queues b and processes it in the background. It returns the job id.
func (r *Runner) Submit(b Batch) (string, error) {
	if err := validateBatch(b); err != nil {
		return "", err
	}
	jobID := r.newJob(b)
	go r.runJob(context.Background(), jobID, b)
	return jobID, nil
}

// Run processes b synchronously and returns the final job.
func (r *Runner) Run(ctx context.Context, b Batch) (Job, error) {
	if err := validateBatch(b); err != nil {
		return Job{}, err
	}
	jobID := r.newJob(b)
	r.runJob(ctx, jobID, b)
	job, _ := r.Status(jobID)
	return job, nil
}

// Status returns a snapshot of a job.
func (r *Runner) Status(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[id]
	if job == nil {
		return Job{}, false
	}
	return job.clone(), true
}

// Jobs returns snapshots of every job ordered by id.
func (r *Runner) Jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.jobs))
	for id := range r.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	jobs := make([]Job, 0, len(ids))
	for _, id := range ids {
		jobs = append(jobs, r.jobs[id].clone())
	}
	return jobs
}

func validateBatch(b Batch) error {
	if _, err := artifacts.ParseKind(string(b.Kind)); err != nil {
		return err
	}
	if len(b.Items) == 0 {
		return fmt.Errorf("batch has no items")
	}
	if b.Delay < 0 {
		return fmt.Errorf("negative delay %s", b.Delay)
	}
	return nil
}

func (r *Runner) newJob(b Batch) string {
	items := make([]ItemState, len(b.Items))
	for i, item := range b.Items {
		items[i] = ItemState{ProductName: item.ProductName, Category: item.Category, State: StateQueued}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	jobID := fmt.Sprintf("batch-%d", now.UnixNano())
	for n := 1; r.jobs[jobID] != nil; n++ {
		jobID = fmt.Sprintf("batch-%d-%d", now.UnixNano(), n)
	}
	r.jobs[jobID] = &Job{ID: jobID, State: StateQueued, Kind: b.Kind, Items: items, UpdatedAt: now}
	return jobID
}

func (r *Runner) runJob(ctx context.Context, jobID string, b Batch) {
	logger := r.logger.With(zap.String("job", jobID), zap.String("kind", string(b.Kind)))
	r.updateJob(jobID, StateRunning, "started", 0)
	logger.Info("batch started", zap.Int("items", len(b.Items)))

	for i, item := range b.Items {
		if i > 0 && b.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(b.Delay):
			}
		}
		if err := ctx.Err(); err != nil {
			r.skipRemaining(jobID, i, err)
			logger.Warn("batch interrupted", zap.Error(err))
			r.updateJob(jobID, StateFailed, err.Error(), 1)
			return
		}

		r.updateItem(jobID, i, ItemState{State: StateRunning})
		state := r.runItem(ctx, logger, b, item)
		r.updateItem(jobID, i, state)
		r.updateJob(jobID, StateRunning, fmt.Sprintf("%d/%d", i+1, len(b.Items)), float64(i+1)/float64(len(b.Items)))
	}

	job, _ := r.Status(jobID)
	if job.Succeeded == 0 {
		logger.Warn("batch failed", zap.Int("failed", job.Failed))
		r.updateJob(jobID, StateFailed, "no artifacts generated", 1)
		return
	}
	logger.Info("batch completed", zap.Int("succeeded", job.Succeeded), zap.Int("failed", job.Failed))
	r.updateJob(jobID, StateCompleted, fmt.Sprintf("%d generated, %d skipped", job.Succeeded, job.Failed), 1)
}

func (r *Runner) runItem(ctx context.Context, logger *zap.Logger, b Batch, item Item) ItemState {
	state := ItemState{ProductName: item.ProductName, Category: item.Category}

	itemCtx, cancel := context.WithTimeout(ctx, r.itemTimeout)
	defer cancel()

	artifact, err := r.synth.Synthesize(itemCtx, imaging.Request{
		ProductName: item.ProductName,
		Category:    item.Category,
		Width:       b.Width,
		Height:      b.Height,
		Quality:     b.Quality,
		Format:      b.Format,
	})
	if err != nil {
		logger.Warn("skipping product", zap.String("product", item.ProductName), zap.String("category", item.Category), zap.Error(err))
		state.State = StateFailed
		state.Error = err.Error()
		return state
	}

	path, err := r.store.Save(b.Kind, artifact.Filename, artifact.Data)
	if err != nil {
		logger.Warn("saving artifact failed", zap.String("file", artifact.Filename), zap.Error(err))
		state.State = StateFailed
		state.Error = err.Error()
		return state
	}

	logger.Info("generated", zap.String("product", item.ProductName), zap.String("path", path), zap.String("color", artifact.Color))
	state.State = StateCompleted
	state.Path = path
	state.Color = artifact.Color
	return state
}

func (r *Runner) updateJob(jobID, state, message string, progress float64) {
	r.mu.Lock()
	job := r.jobs[jobID]
	if job != nil {
		job.State = state
		job.Message = message
		job.Progress = progress
		job.UpdatedAt = time.Now()
	}
	r.mu.Unlock()
}

func (r *Runner) updateItem(jobID string, index int, state ItemState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[jobID]
	if job == nil || index < 0 || index >= len(job.Items) {
		return
	}
	entry := &job.Items[index]
	entry.State = state.State
	entry.Path = state.Path
	entry.Color = state.Color
	entry.Error = state.Error
	switch state.State {
	case StateCompleted:
		job.Succeeded++
	case StateFailed:
		job.Failed++
	}
	job.UpdatedAt = time.Now()
}

func (r *Runner) skipRemaining(jobID string, from int, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[jobID]
	if job == nil {
		return
	}
	for i := from; i < len(job.Items); i++ {
		job.Items[i].State = StateSkipped
		job.Items[i].Error = cause.Error()
	}
	job.UpdatedAt = time.Now()
}
