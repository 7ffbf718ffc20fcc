package gui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/jodinathan/filedrive/internal/models"
)

// FileList renders one account's file entries as item cards: an icon, the
// name, and a size/date line. Tapping a folder descends into it; tapping a
// file selects it.
type FileList struct {
	widget.BaseWidget

	mu    sync.RWMutex
	items []models.FileItem

	list *widget.List

	// OnOpenFolder fires when the user activates a folder row.
	OnOpenFolder func(item models.FileItem)
	// OnSelect fires when the user selects a file row.
	OnSelect func(item models.FileItem)
}

// NewFileList creates an empty file list.
func NewFileList() *FileList {
	fl := &FileList{}

	fl.list = widget.NewList(
		func() int {
			fl.mu.RLock()
			defer fl.mu.RUnlock()
			return len(fl.items)
		},
		func() fyne.CanvasObject {
			icon := widget.NewIcon(theme.FileIcon())
			name := widget.NewLabel("name")
			name.TextStyle = fyne.TextStyle{Bold: true}
			meta := widget.NewLabel("meta")
			return container.NewBorder(nil, nil, icon, meta, name)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			fl.mu.RLock()
			if id < 0 || id >= len(fl.items) {
				fl.mu.RUnlock()
				return
			}
			item := fl.items[id]
			fl.mu.RUnlock()

			row := obj.(*fyne.Container)
			icon := row.Objects[1].(*widget.Icon)
			meta := row.Objects[2].(*widget.Label)
			name := row.Objects[0].(*widget.Label)

			name.SetText(item.Name)
			if item.IsFolder {
				icon.SetResource(theme.FolderIcon())
				meta.SetText("")
			} else {
				icon.SetResource(theme.FileIcon())
				text := formatSize(item.Size)
				if !item.Modified.IsZero() {
					text += "  " + item.Modified.Format("2006-01-02 15:04")
				}
				meta.SetText(text)
			}
		},
	)

	fl.list.OnSelected = func(id widget.ListItemID) {
		fl.mu.RLock()
		if id < 0 || id >= len(fl.items) {
			fl.mu.RUnlock()
			return
		}
		item := fl.items[id]
		fl.mu.RUnlock()

		if item.IsFolder {
			fl.list.UnselectAll()
			if fl.OnOpenFolder != nil {
				fl.OnOpenFolder(item)
			}
			return
		}
		if fl.OnSelect != nil {
			fl.OnSelect(item)
		}
	}

	fl.ExtendBaseWidget(fl)
	return fl
}

// SetItems replaces the displayed entries. Safe from any goroutine.
func (fl *FileList) SetItems(items []models.FileItem) {
	fl.mu.Lock()
	fl.items = items
	fl.mu.Unlock()

	fyne.Do(func() {
		fl.list.UnselectAll()
		fl.list.Refresh()
	})
}

// Items returns the current entries.
func (fl *FileList) Items() []models.FileItem {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	out := make([]models.FileItem, len(fl.items))
	copy(out, fl.items)
	return out
}

// CreateRenderer implements fyne.Widget.
func (fl *FileList) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(fl.list)
}

// formatSize renders a byte count for display.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
