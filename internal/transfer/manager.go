// Package transfer orchestrates upload and download tasks across cloud
// providers with a bounded worker pool.
package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/jodinathan/filedrive/internal/cloud/storage"
	"github.com/jodinathan/filedrive/internal/constants"
	"github.com/jodinathan/filedrive/internal/diskspace"
	"github.com/jodinathan/filedrive/internal/events"
	"github.com/jodinathan/filedrive/internal/models"
)

// TaskType distinguishes uploads from downloads.
type TaskType string

const (
	TaskUpload   TaskType = "upload"
	TaskDownload TaskType = "download"
)

// TaskState is the lifecycle state of a task.
type TaskState string

const (
	StateQueued    TaskState = "queued"
	StateRunning   TaskState = "running"
	StateCompleted TaskState = "completed"
	StateFailed    TaskState = "failed"
	StateCancelled TaskState = "cancelled"
)

// Task is one queued transfer.
type Task struct {
	ID        string
	Type      TaskType
	AccountID string
	LocalPath string
	Folder    string          // upload destination folder
	Item      models.FileItem // download source

	provider storage.Provider
	cancel   context.CancelFunc

	mu    sync.Mutex
	state TaskState
	err   error
}

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the failure cause, nil unless the task failed.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) setState(state TaskState, err error) {
	t.mu.Lock()
	t.state = state
	t.err = err
	t.mu.Unlock()
}

// Name returns the display name for the task.
func (t *Task) Name() string {
	if t.Type == TaskDownload {
		return t.Item.Name
	}
	return filepath.Base(t.LocalPath)
}

// Cancel aborts the task if it is still running.
func (t *Task) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (t *Task) size() int64 {
	if t.Type == TaskDownload {
		return t.Item.Size
	}
	return 0
}

// Manager runs transfer tasks on a bounded worker pool and publishes
// lifecycle events on the bus.
type Manager struct {
	bus     *events.EventBus
	queue   chan *Task
	workers int

	mu      sync.Mutex
	tasks   map[string]*Task
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager creates a manager with the given parallelism. Workers do not
// start until Start is called.
func NewManager(bus *events.EventBus, workers int) *Manager {
	if workers <= 0 {
		workers = constants.DefaultParallelTransfers
	}
	if workers > constants.MaxParallelTransfers {
		workers = constants.MaxParallelTransfers
	}
	return &Manager{
		bus:     bus,
		queue:   make(chan *Task, workers*constants.TransferQueueMultiplier),
		workers: workers,
		tasks:   make(map[string]*Task),
	}
}

// Start launches the worker pool. Calling Start twice is a no-op.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker(runCtx)
	}
}

// Stop cancels all running tasks, waits for the workers to drain, and marks
// any task still sitting in the queue as cancelled so every accepted task
// reaches a terminal state.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.started = false
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	for {
		select {
		case task := <-m.queue:
			task.setState(StateCancelled, context.Canceled)
			m.bus.PublishTransfer(events.EventTransferCancelled, task.ID, string(task.Type), task.AccountID, task.Name(), task.size(), 0, context.Canceled)
		default:
			return
		}
	}
}

// Task returns a queued or finished task by ID.
func (m *Manager) Task(id string) (*Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	return t, ok
}

// QueueUpload enqueues an upload of localPath into folder on the provider.
func (m *Manager) QueueUpload(provider storage.Provider, accountID, localPath, folder string) (*Task, error) {
	task := &Task{
		ID:        uuid.NewString(),
		Type:      TaskUpload,
		AccountID: accountID,
		LocalPath: localPath,
		Folder:    folder,
		provider:  provider,
		state:     StateQueued,
	}
	return m.enqueue(task)
}

// QueueDownload enqueues a download of item to localPath.
func (m *Manager) QueueDownload(provider storage.Provider, accountID string, item models.FileItem, localPath string) (*Task, error) {
	task := &Task{
		ID:        uuid.NewString(),
		Type:      TaskDownload,
		AccountID: accountID,
		LocalPath: localPath,
		Item:      item,
		provider:  provider,
		state:     StateQueued,
	}
	return m.enqueue(task)
}

func (m *Manager) enqueue(task *Task) (*Task, error) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil, fmt.Errorf("transfer manager is not running")
	}
	m.tasks[task.ID] = task
	m.mu.Unlock()

	select {
	case m.queue <- task:
	default:
		m.mu.Lock()
		delete(m.tasks, task.ID)
		m.mu.Unlock()
		return nil, fmt.Errorf("transfer queue is full")
	}

	m.bus.PublishTransfer(events.EventTransferQueued, task.ID, string(task.Type), task.AccountID, task.Name(), task.size(), 0, nil)
	return task, nil
}

func (m *Manager) worker(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-m.queue:
			m.run(ctx, task)
		}
	}
}

// run executes one task, publishing started, progress and terminal events.
func (m *Manager) run(ctx context.Context, task *Task) {
	taskCtx, cancel := context.WithCancel(ctx)
	task.mu.Lock()
	task.cancel = cancel
	task.mu.Unlock()
	defer cancel()

	task.setState(StateRunning, nil)
	m.bus.PublishTransfer(events.EventTransferStarted, task.ID, string(task.Type), task.AccountID, task.Name(), task.size(), 0, nil)

	progress := func(fraction float64) {
		m.bus.PublishTransfer(events.EventTransferProgress, task.ID, string(task.Type), task.AccountID, task.Name(), task.size(), fraction, nil)
	}

	var err error
	switch task.Type {
	case TaskUpload:
		_, err = task.provider.Upload(taskCtx, task.LocalPath, task.Folder, progress)
	case TaskDownload:
		err = diskspace.Check(task.LocalPath, task.Item.Size, constants.DiskSpaceSafetyMargin)
		if err == nil {
			err = task.provider.Download(taskCtx, task.Item, task.LocalPath, progress)
		}
	default:
		err = fmt.Errorf("unknown task type %q", task.Type)
	}

	switch {
	case err == nil:
		task.setState(StateCompleted, nil)
		m.bus.PublishTransfer(events.EventTransferCompleted, task.ID, string(task.Type), task.AccountID, task.Name(), task.size(), 1.0, nil)
	case taskCtx.Err() != nil:
		task.setState(StateCancelled, taskCtx.Err())
		m.bus.PublishTransfer(events.EventTransferCancelled, task.ID, string(task.Type), task.AccountID, task.Name(), task.size(), 0, taskCtx.Err())
	default:
		task.setState(StateFailed, err)
		m.bus.PublishTransfer(events.EventTransferFailed, task.ID, string(task.Type), task.AccountID, task.Name(), task.size(), 0, err)
	}
}
