package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-imagery/internal/artifacts"
	"storefront-imagery/internal/imaging"
)

type fakeSynth struct {
	mu    sync.Mutex
	reqs  []imaging.Request
	fail  map[string]error
	block chan struct{}
}

func (f *fakeSynth) Synthesize(ctx context.Context, req imaging.Request) (*imaging.Artifact, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	err := f.fail[req.ProductName]
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	slug := strings.ToLower(req.Category)
	if slug == "" {
		slug = "sarees"
	}
	return &imaging.Artifact{
		Filename: "accurate-" + slug + "-" + strings.ReplaceAll(strings.ToLower(req.ProductName), " ", "-") + ".jpg",
		Data:     []byte("jpeg"),
		Color:    "Royal Blue",
	}, nil
}

func (f *fakeSynth) requests() []imaging.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]imaging.Request(nil), f.reqs...)
}

type fakeSaver struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func (f *fakeSaver) Save(kind artifacts.Kind, name string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	path := string(kind) + "/" + name
	f.saved[path] = data
	return path, nil
}

func testItems() []Item {
	return []Item{
		{ProductName: "Elegant Silk Saree", Category: "Sarees"},
		{ProductName: "Bridal Lehenga", Category: "Lehengas"},
		{ProductName: "Kundan Necklace Set", Category: "Jewelry"},
	}
}

func TestRunGeneratesEveryItem(t *testing.T) {
	synth := &fakeSynth{}
	saver := &fakeSaver{}
	runner := NewRunner(synth, saver, nil, time.Second)

	job, err := runner.Run(context.Background(), Batch{Kind: artifacts.Products, Items: testItems(), Width: 400, Height: 400, Quality: 85})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.State != StateCompleted || !job.Done() {
		t.Fatalf("expected completed job, got %s (%s)", job.State, job.Message)
	}
	if job.Succeeded != 3 || job.Failed != 0 || job.Progress != 1 {
		t.Fatalf("unexpected counters: %+v", job)
	}
	for _, item := range job.Items {
		if item.State != StateCompleted || !strings.HasPrefix(item.Path, "products/accurate-") {
			t.Fatalf("unexpected item state: %+v", item)
		}
	}
	reqs := synth.requests()
	if len(reqs) != 3 || reqs[1].Category != "Lehengas" || reqs[1].Width != 400 || reqs[1].Quality != 85 {
		t.Fatalf("unexpected requests: %+v", reqs)
	}
	if len(saver.saved) != 3 {
		t.Fatalf("expected 3 saved artifacts, got %d", len(saver.saved))
	}
}

func TestRunSkipsFailedItem(t *testing.T) {
	synth := &fakeSynth{fail: map[string]error{
		"Bridal Lehenga": &imaging.SynthesisError{Category: "Lehengas", Op: "render", Err: errors.New("boom")},
	}}
	runner := NewRunner(synth, &fakeSaver{}, nil, time.Second)

	job, err := runner.Run(context.Background(), Batch{Kind: artifacts.Patterns, Items: testItems()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.State != StateCompleted {
		t.Fatalf("expected completed job, got %s", job.State)
	}
	if job.Succeeded != 2 || job.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", job)
	}
	if job.Items[1].State != StateFailed || !strings.Contains(job.Items[1].Error, "boom") {
		t.Fatalf("unexpected failed item: %+v", job.Items[1])
	}
	if job.Items[2].State != StateCompleted {
		t.Fatalf("later items should still run: %+v", job.Items[2])
	}
}

func TestRunAllFailedMarksJobFailed(t *testing.T) {
	runner := NewRunner(&fakeSynth{}, &fakeSaver{err: errors.New("disk full")}, nil, time.Second)

	job, err := runner.Run(context.Background(), Batch{Kind: artifacts.Categories, Items: testItems()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.State != StateFailed {
		t.Fatalf("expected failed job, got %s", job.State)
	}
	if job.Failed != 3 || job.Message != "no artifacts generated" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestRunCanceledSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(&fakeSynth{}, &fakeSaver{}, nil, time.Second)

	job, err := runner.Run(ctx, Batch{Kind: artifacts.Products, Items: testItems()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.State != StateFailed {
		t.Fatalf("expected failed job, got %s", job.State)
	}
	for _, item := range job.Items {
		if item.State != StateSkipped {
			t.Fatalf("expected skipped item, got %+v", item)
		}
	}
}

func TestRunItemTimeout(t *testing.T) {
	synth := &fakeSynth{block: make(chan struct{})}
	runner := NewRunner(synth, &fakeSaver{}, nil, 20*time.Millisecond)

	job, err := runner.Run(context.Background(), Batch{Kind: artifacts.Products, Items: testItems()[:1]})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.State != StateFailed {
		t.Fatalf("expected failed job, got %s", job.State)
	}
	if !strings.Contains(job.Items[0].Error, context.DeadlineExceeded.Error()) {
		t.Fatalf("expected deadline error, got %q", job.Items[0].Error)
	}
}

func TestSubmitRunsInBackground(t *testing.T) {
	synth := &fakeSynth{block: make(chan struct{})}
	runner := NewRunner(synth, &fakeSaver{}, nil, time.Second)

	jobID, err := runner.Submit(Batch{Kind: artifacts.Backgrounds, Items: testItems(), Delay: time.Millisecond})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if jobID == "" {
		t.Fatalf("expected job id")
	}

	waitFor(t, time.Second, func() bool {
		job, ok := runner.Status(jobID)
		return ok && job.State == StateRunning
	})
	close(synth.block)

	waitFor(t, time.Second, func() bool {
		job, _ := runner.Status(jobID)
		return job.Done()
	})
	job, _ := runner.Status(jobID)
	if job.State != StateCompleted || job.Succeeded != 3 {
		t.Fatalf("unexpected final job: %+v", job)
	}

	jobs := runner.Jobs()
	if len(jobs) != 1 || jobs[0].ID != jobID {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestRunUnknownCategoriesWithPathCharacters(t *testing.T) {
	store := artifacts.NewStore(t.TempDir())
	runner := NewRunner(imaging.New(), store, nil, 10*time.Second)

	job, err := runner.Run(context.Background(), Batch{
		Kind:   artifacts.Products,
		Width:  100,
		Height: 100,
		Items: []Item{
			{ProductName: "Cushion", Category: "Home/Decor"},
			{ProductName: "Bag", Category: "../Bags"},
			{ProductName: "Quote", Category: `a"b`},
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.State != StateCompleted || job.Succeeded != 3 {
		t.Fatalf("unexpected job: %+v", job)
	}

	names, err := store.List(artifacts.Products)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	prefixes := []string{"accurate-a-b-", "accurate-bags-", "accurate-home-decor-"}
	if len(names) != len(prefixes) {
		t.Fatalf("unexpected artifacts: %v", names)
	}
	for i, name := range names {
		if !strings.HasPrefix(name, prefixes[i]) {
			t.Fatalf("artifact %q should start with %q", name, prefixes[i])
		}
	}
}

func TestStatusUnknown(t *testing.T) {
	runner := NewRunner(&fakeSynth{}, &fakeSaver{}, nil, time.Second)
	if _, ok := runner.Status("missing"); ok {
		t.Fatalf("expected unknown job")
	}
}

func TestSubmitValidation(t *testing.T) {
	runner := NewRunner(&fakeSynth{}, &fakeSaver{}, nil, time.Second)
	cases := []Batch{
		{Kind: "thumbnails", Items: testItems()},
		{Kind: artifacts.Products},
		{Kind: artifacts.Products, Items: testItems(), Delay: -time.Second},
	}
	for _, b := range cases {
		if _, err := runner.Submit(b); err == nil {
			t.Fatalf("expected validation error for %+v", b)
		}
	}
	if len(runner.Jobs()) != 0 {
		t.Fatalf("rejected batches must not create jobs")
	}
}

func TestJobSnapshotsAreIndependent(t *testing.T) {
	runner := NewRunner(&fakeSynth{}, &fakeSaver{}, nil, time.Second)
	job, err := runner.Run(context.Background(), Batch{Kind: artifacts.Products, Items: testItems()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	job.Items[0].State = "tampered"

	again, _ := runner.Status(job.ID)
	if again.Items[0].State != StateCompleted {
		t.Fatalf("snapshot mutation leaked into runner: %+v", again.Items[0])
	}
}

func waitFor(t *testing.T, timeout time.Duration, fn func() bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
