package transfer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jodinathan/filedrive/internal/cloud/storage"
	"github.com/jodinathan/filedrive/internal/events"
	"github.com/jodinathan/filedrive/internal/models"
)

// fakeProvider implements storage.Provider with scriptable behavior.
type fakeProvider struct {
	uploadErr   error
	downloadErr error
	uploads     atomic.Int32
	downloads   atomic.Int32
	block       chan struct{} // when non-nil, operations wait on it or ctx
}

func (f *fakeProvider) Info() models.ProviderInfo {
	return models.ProviderInfo{Kind: models.ProviderS3, DisplayName: "fake"}
}

func (f *fakeProvider) EnsureFreshCredentials(ctx context.Context) error { return nil }

func (f *fakeProvider) List(ctx context.Context, folder, pageToken string) (models.ListPage, error) {
	return models.ListPage{}, nil
}

func (f *fakeProvider) Upload(ctx context.Context, localPath, folder string, progress storage.ProgressFunc) (models.FileItem, error) {
	f.uploads.Add(1)
	if err := f.wait(ctx); err != nil {
		return models.FileItem{}, err
	}
	if f.uploadErr != nil {
		return models.FileItem{}, f.uploadErr
	}
	if progress != nil {
		progress(0.5)
		progress(1.0)
	}
	return models.FileItem{Name: filepath.Base(localPath)}, nil
}

func (f *fakeProvider) Download(ctx context.Context, item models.FileItem, localPath string, progress storage.ProgressFunc) error {
	f.downloads.Add(1)
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.downloadErr != nil {
		return f.downloadErr
	}
	if progress != nil {
		progress(1.0)
	}
	return os.WriteFile(localPath, []byte("data"), 0o644)
}

func (f *fakeProvider) wait(ctx context.Context) error {
	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitForState polls a task until it reaches a terminal state or times out.
func waitForState(t *testing.T, task *Task, want TaskState) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		if task.State() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("task state = %q, want %q", task.State(), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// drainEvents collects transfer event types from a subscription channel.
func drainEvents(ch <-chan events.Event) []events.EventType {
	var got []events.EventType
	for {
		select {
		case ev := <-ch:
			got = append(got, ev.Type())
		case <-time.After(100 * time.Millisecond):
			return got
		}
	}
}

// TestUploadLifecycle verifies a successful upload moves through queued,
// started and completed events.
func TestUploadLifecycle(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()

	queued := bus.Subscribe(events.EventTransferQueued)
	completed := bus.Subscribe(events.EventTransferCompleted)

	m := NewManager(bus, 2)
	m.Start(context.Background())
	defer m.Stop()

	local := filepath.Join(t.TempDir(), "report.csv")
	if err := os.WriteFile(local, []byte("a,b"), 0o644); err != nil {
		t.Fatal(err)
	}

	fp := &fakeProvider{}
	task, err := m.QueueUpload(fp, "acct1", local, "reports")
	if err != nil {
		t.Fatalf("QueueUpload() error = %v", err)
	}

	waitForState(t, task, StateCompleted)

	if fp.uploads.Load() != 1 {
		t.Errorf("uploads = %d, want 1", fp.uploads.Load())
	}
	select {
	case <-queued:
	case <-time.After(time.Second):
		t.Error("no queued event")
	}
	select {
	case ev := <-completed:
		te := ev.(*events.TransferEvent)
		if te.TaskID != task.ID {
			t.Errorf("completed TaskID = %q, want %q", te.TaskID, task.ID)
		}
	case <-time.After(time.Second):
		t.Error("no completed event")
	}
}

// TestDownloadWritesFile verifies a download lands the file on disk.
func TestDownloadWritesFile(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()

	m := NewManager(bus, 1)
	m.Start(context.Background())
	defer m.Stop()

	local := filepath.Join(t.TempDir(), "photo.jpg")
	item := models.FileItem{ID: "photos/photo.jpg", Name: "photo.jpg", Path: "photos/photo.jpg", Size: 4}

	task, err := m.QueueDownload(&fakeProvider{}, "acct1", item, local)
	if err != nil {
		t.Fatalf("QueueDownload() error = %v", err)
	}

	waitForState(t, task, StateCompleted)

	if _, err := os.Stat(local); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

// TestFailedTaskPublishesFailure verifies provider errors surface as failed
// state and a failed event carrying the cause.
func TestFailedTaskPublishesFailure(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()

	failed := bus.Subscribe(events.EventTransferFailed)

	m := NewManager(bus, 1)
	m.Start(context.Background())
	defer m.Stop()

	local := filepath.Join(t.TempDir(), "big.bin")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("bucket gone")
	task, err := m.QueueUpload(&fakeProvider{uploadErr: boom}, "acct1", local, "")
	if err != nil {
		t.Fatal(err)
	}

	waitForState(t, task, StateFailed)

	if !errors.Is(task.Err(), boom) {
		t.Errorf("task.Err() = %v, want %v", task.Err(), boom)
	}
	select {
	case ev := <-failed:
		te := ev.(*events.TransferEvent)
		if te.Error == nil {
			t.Error("failed event has nil error")
		}
	case <-time.After(time.Second):
		t.Error("no failed event")
	}
}

// TestCancelRunningTask verifies Cancel aborts an in-flight task and a
// cancelled event is published.
func TestCancelRunningTask(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()

	cancelled := bus.Subscribe(events.EventTransferCancelled)

	m := NewManager(bus, 1)
	m.Start(context.Background())
	defer m.Stop()

	local := filepath.Join(t.TempDir(), "slow.bin")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	fp := &fakeProvider{block: make(chan struct{})}
	task, err := m.QueueUpload(fp, "acct1", local, "")
	if err != nil {
		t.Fatal(err)
	}

	waitForState(t, task, StateRunning)
	task.Cancel()
	waitForState(t, task, StateCancelled)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Error("no cancelled event")
	}
}

// TestStopCancelsQueuedTasks verifies Stop leaves no task stranded in the
// queued state: tasks still waiting for a worker end up cancelled with a
// cancelled event.
func TestStopCancelsQueuedTasks(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()

	cancelled := bus.Subscribe(events.EventTransferCancelled)

	m := NewManager(bus, 1)
	m.Start(context.Background())

	dir := t.TempDir()
	fp := &fakeProvider{block: make(chan struct{})}

	var tasks []*Task
	for i := 0; i < 3; i++ {
		local := filepath.Join(dir, "f"+string(rune('a'+i)))
		if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		task, err := m.QueueUpload(fp, "acct1", local, "")
		if err != nil {
			t.Fatal(err)
		}
		tasks = append(tasks, task)
	}

	waitForState(t, tasks[0], StateRunning)
	m.Stop()

	for i, task := range tasks {
		if got := task.State(); got != StateCancelled {
			t.Errorf("task %d state = %q, want %q", i, got, StateCancelled)
		}
	}

	got := drainEvents(cancelled)
	if len(got) != len(tasks) {
		t.Errorf("cancelled events = %d, want %d", len(got), len(tasks))
	}
}

// TestQueueRejectsWhenStopped verifies enqueue fails before Start and after
// Stop.
func TestQueueRejectsWhenStopped(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()

	m := NewManager(bus, 1)
	if _, err := m.QueueUpload(&fakeProvider{}, "acct1", "/tmp/x", ""); err == nil {
		t.Error("QueueUpload() before Start should fail")
	}

	m.Start(context.Background())
	m.Stop()

	if _, err := m.QueueUpload(&fakeProvider{}, "acct1", "/tmp/x", ""); err == nil {
		t.Error("QueueUpload() after Stop should fail")
	}
}

// TestParallelismBound verifies no more than the configured number of tasks
// run at once.
func TestParallelismBound(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()

	m := NewManager(bus, 2)
	m.Start(context.Background())
	defer m.Stop()

	dir := t.TempDir()
	release := make(chan struct{})
	fp := &fakeProvider{block: release}

	var tasks []*Task
	for i := 0; i < 4; i++ {
		local := filepath.Join(dir, "f"+string(rune('a'+i)))
		if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		task, err := m.QueueUpload(fp, "acct1", local, "")
		if err != nil {
			t.Fatal(err)
		}
		tasks = append(tasks, task)
	}

	time.Sleep(100 * time.Millisecond)
	if n := fp.uploads.Load(); n != 2 {
		t.Errorf("concurrent uploads = %d, want 2", n)
	}

	close(release)
	for _, task := range tasks {
		waitForState(t, task, StateCompleted)
	}
}
