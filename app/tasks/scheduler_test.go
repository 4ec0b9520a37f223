package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tabmemory/tabmemory/app/database"
	"github.com/tabmemory/tabmemory/app/generation"
)

type signalTask struct {
	Task
	done chan string
	err  error
}

func newSignalTask(done chan string, err error) *signalTask {
	return &signalTask{
		Task: NewTask(TaskTypeSummarizeTab, "tab-1"),
		done: done,
		err:  err,
	}
}

func (t *signalTask) Execute(ctx context.Context) error {
	t.done <- t.GetID()
	return t.err
}

func TestSchedulerExecutesTasks(t *testing.T) {
	scheduler := NewScheduler(2, 10)
	scheduler.Start()
	defer scheduler.Stop()

	done := make(chan string, 3)
	enqueued := make(map[string]bool)

	for i := 0; i < 3; i++ {
		task := newSignalTask(done, nil)
		enqueued[task.GetID()] = true
		if err := scheduler.EnqueueTask(task); err != nil {
			t.Fatalf("Failed to enqueue task: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		select {
		case id := <-done:
			if !enqueued[id] {
				t.Errorf("Executed unknown task id %q", id)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Timed out waiting for tasks to execute")
		}
	}
}

func TestSchedulerSwallowsTaskFailure(t *testing.T) {
	scheduler := NewScheduler(1, 10)
	scheduler.Start()
	defer scheduler.Stop()

	done := make(chan string, 2)

	// The first task fails; the second must still run (no retry loop,
	// no worker death).
	if err := scheduler.EnqueueTask(newSignalTask(done, errors.New("boom"))); err != nil {
		t.Fatalf("Failed to enqueue failing task: %v", err)
	}
	if err := scheduler.EnqueueTask(newSignalTask(done, nil)); err != nil {
		t.Fatalf("Failed to enqueue second task: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Timed out waiting for tasks after a failure")
		}
	}
}

func TestEnqueueTaskQueueFull(t *testing.T) {
	// Not started, so nothing drains the queue
	scheduler := NewScheduler(1, 1)

	done := make(chan string, 2)
	if err := scheduler.EnqueueTask(newSignalTask(done, nil)); err != nil {
		t.Fatalf("First enqueue should succeed: %v", err)
	}
	if err := scheduler.EnqueueTask(newSignalTask(done, nil)); err == nil {
		t.Error("Expected error when the task queue is full")
	}
}

func TestEnqueueTaskAfterStop(t *testing.T) {
	scheduler := NewScheduler(1, 1)
	scheduler.Start()
	scheduler.Stop()

	done := make(chan string, 1)
	if err := scheduler.EnqueueTask(newSignalTask(done, nil)); err == nil {
		t.Error("Expected error when enqueueing after Stop")
	}
}

// fakeGenClient stubs the generation client for task tests.
type fakeGenClient struct {
	summary string
	err     error
}

func (f *fakeGenClient) SummarizeTab(ctx context.Context, tab generation.TabInput) (string, error) {
	return f.summary, f.err
}

func (f *fakeGenClient) GenerateDigest(ctx context.Context, tabs []generation.DigestTab, start, end time.Time) (string, error) {
	return "", errors.New("not implemented")
}

// fakeTabRepo records summary updates for task tests.
type fakeTabRepo struct {
	mu            sync.Mutex
	rowExists     bool
	updateErr     error
	updatedID     string
	updatedText   string
	updatedAt     time.Time
	updateCalled  bool
	contentByID   map[string]string
	contentCalled bool
}

func (f *fakeTabRepo) Insert(ownerID int, tab database.NewTab) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeTabRepo) UpdateSummary(id string, ownerID int, summary string, generatedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalled = true
	f.updatedID = id
	f.updatedText = summary
	f.updatedAt = generatedAt
	return f.rowExists, f.updateErr
}

func (f *fakeTabRepo) UpdateContent(id string, ownerID int, content string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentCalled = true
	if f.contentByID == nil {
		f.contentByID = make(map[string]string)
	}
	f.contentByID[id] = content
	return f.rowExists, nil
}

func (f *fakeTabRepo) List(ownerID, limit, offset int) ([]database.Tab, error) {
	return nil, nil
}

func (f *fakeTabRepo) Count(ownerID int) (int, error) { return 0, nil }

func (f *fakeTabRepo) Get(id string, ownerID int) (*database.Tab, error) { return nil, nil }

func (f *fakeTabRepo) Delete(id string, ownerID int) (bool, error) { return false, nil }

func (f *fakeTabRepo) ListRange(ownerID int, start, end time.Time) ([]database.Tab, error) {
	return nil, nil
}

func TestSummarizeTabTaskSuccess(t *testing.T) {
	repo := &fakeTabRepo{rowExists: true}
	client := &fakeGenClient{summary: "Generated summary."}

	task := NewSummarizeTabTask("tab-42", 1, generation.TabInput{
		Title:   "Test Tab",
		URL:     "https://example.com",
		Content: "page text",
	}, client, repo)

	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !repo.updateCalled {
		t.Fatal("Expected summary update to be called")
	}
	if repo.updatedID != "tab-42" {
		t.Errorf("Expected update for tab-42, got %q", repo.updatedID)
	}
	if repo.updatedText != "Generated summary." {
		t.Errorf("Expected generated summary to be stored, got %q", repo.updatedText)
	}
	if repo.updatedAt.IsZero() {
		t.Error("Expected a generation timestamp alongside the summary")
	}
}

func TestSummarizeTabTaskGenerationFailure(t *testing.T) {
	repo := &fakeTabRepo{rowExists: true}
	client := &fakeGenClient{err: errors.New("model unavailable")}

	task := NewSummarizeTabTask("tab-1", 1, generation.TabInput{Title: "t", URL: "u", Content: "c"}, client, repo)

	if err := task.Execute(context.Background()); err == nil {
		t.Fatal("Expected error when generation fails")
	}
	if repo.updateCalled {
		t.Error("No summary update should happen when generation fails")
	}
}

func TestSummarizeTabTaskDeletedRow(t *testing.T) {
	// The tab was deleted while the generation call was in flight: the
	// update matches no row and the task finishes without error.
	repo := &fakeTabRepo{rowExists: false}
	client := &fakeGenClient{summary: "late summary"}

	task := NewSummarizeTabTask("tab-gone", 1, generation.TabInput{Title: "t", URL: "u", Content: "c"}, client, repo)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Deleted row should be a no-op, got error: %v", err)
	}
}

func TestSummarizeTabTaskCancelledContext(t *testing.T) {
	repo := &fakeTabRepo{rowExists: true}
	client := &fakeGenClient{summary: "s"}

	task := NewSummarizeTabTask("tab-1", 1, generation.TabInput{Title: "t", URL: "u", Content: "c"}, client, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := task.Execute(ctx); err == nil {
		t.Error("Expected context cancellation error")
	}
}
