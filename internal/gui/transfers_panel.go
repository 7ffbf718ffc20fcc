package gui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/jodinathan/filedrive/internal/events"
)

// TransfersPanel shows per-task progress bars for active uploads and
// downloads, fed by transfer events from the bus.
type TransfersPanel struct {
	widget.BaseWidget

	mu     sync.Mutex
	bars   map[string]*widget.ProgressBar
	labels map[string]*widget.Label
	rows   *fyne.Container
	scroll *container.Scroll

	clearBtn *widget.Button
}

// NewTransfersPanel creates an empty panel. It stays hidden until the first
// transfer event arrives.
func NewTransfersPanel() *TransfersPanel {
	tp := &TransfersPanel{
		bars:   make(map[string]*widget.ProgressBar),
		labels: make(map[string]*widget.Label),
		rows:   container.NewVBox(),
	}
	tp.scroll = container.NewVScroll(tp.rows)
	tp.scroll.SetMinSize(fyne.NewSize(0, 110))

	tp.clearBtn = widget.NewButton("Clear finished", func() {
		tp.mu.Lock()
		tp.bars = make(map[string]*widget.ProgressBar)
		tp.labels = make(map[string]*widget.Label)
		tp.mu.Unlock()
		fyne.Do(func() {
			tp.rows.RemoveAll()
			tp.Hide()
		})
	})

	tp.ExtendBaseWidget(tp)
	tp.Hide()
	return tp
}

// Handle consumes one transfer event. Safe from any goroutine.
func (tp *TransfersPanel) Handle(ev *events.TransferEvent) {
	switch ev.Type() {
	case events.EventTransferQueued, events.EventTransferStarted:
		tp.ensureRow(ev)
	case events.EventTransferProgress:
		tp.setProgress(ev.TaskID, ev.Progress, "")
	case events.EventTransferCompleted:
		tp.setProgress(ev.TaskID, 1.0, "done")
	case events.EventTransferFailed:
		tp.setProgress(ev.TaskID, 0, fmt.Sprintf("failed: %v", ev.Error))
	case events.EventTransferCancelled:
		tp.setProgress(ev.TaskID, 0, "cancelled")
	}
}

func (tp *TransfersPanel) ensureRow(ev *events.TransferEvent) {
	tp.mu.Lock()
	if _, exists := tp.bars[ev.TaskID]; exists {
		tp.mu.Unlock()
		return
	}
	bar := widget.NewProgressBar()
	label := widget.NewLabel(fmt.Sprintf("%s %s", ev.TaskType, ev.Name))
	tp.bars[ev.TaskID] = bar
	tp.labels[ev.TaskID] = label
	tp.mu.Unlock()

	fyne.Do(func() {
		tp.rows.Add(container.NewBorder(nil, nil, label, nil, bar))
		tp.Show()
		tp.Refresh()
	})
}

func (tp *TransfersPanel) setProgress(taskID string, fraction float64, suffix string) {
	tp.mu.Lock()
	bar := tp.bars[taskID]
	label := tp.labels[taskID]
	tp.mu.Unlock()
	if bar == nil {
		return
	}

	fyne.Do(func() {
		bar.SetValue(fraction)
		if suffix != "" && label != nil {
			label.SetText(label.Text + " (" + suffix + ")")
		}
	})
}

// CreateRenderer implements fyne.Widget.
func (tp *TransfersPanel) CreateRenderer() fyne.WidgetRenderer {
	content := container.NewBorder(nil, container.NewHBox(tp.clearBtn), nil, nil, tp.scroll)
	return widget.NewSimpleRenderer(content)
}
