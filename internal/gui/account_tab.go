package gui

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/jodinathan/filedrive/internal/cloud"
	"github.com/jodinathan/filedrive/internal/cloud/storage"
	"github.com/jodinathan/filedrive/internal/crop"
	"github.com/jodinathan/filedrive/internal/logging"
	"github.com/jodinathan/filedrive/internal/models"
	"github.com/jodinathan/filedrive/internal/search"
	"github.com/jodinathan/filedrive/internal/util/filter"
)

// AccountTab is one provider tab: a debounced search box, folder navigation
// and the file list for a single configured account.
type AccountTab struct {
	engine *Engine
	acct   *models.Account
	window fyne.Window
	logger *logging.Logger

	mu        sync.Mutex
	provider  storage.Provider
	folder    string
	nextToken string
	entries   []models.FileItem // current folder, unfiltered
	query     string
	selected  *models.FileItem

	coordinator *search.Coordinator

	searchEntry *widget.Entry
	pathLabel   *widget.Label
	fileList    *FileList
	upBtn       *widget.Button
	moreBtn     *widget.Button
	uploadBtn   *widget.Button
	downloadBtn *widget.Button
	cropBtn     *widget.Button
	statusBar   *StatusBar
}

// NewAccountTab creates a tab for the account. The provider connection is
// established lazily on first listing.
func NewAccountTab(engine *Engine, acct *models.Account, window fyne.Window) *AccountTab {
	at := &AccountTab{
		engine: engine,
		acct:   acct,
		window: window,
		logger: logging.NewLogger("gui", engine.Bus),
		folder: strings.Trim(acct.RootPath, "/"),
	}

	at.coordinator = search.NewCoordinator(at.onSearchCommitted, at.onSearchCleared,
		search.WithWindow(engine.Config.DebounceWindow))

	return at
}

// Build creates the tab's UI.
func (at *AccountTab) Build() fyne.CanvasObject {
	at.searchEntry = widget.NewEntry()
	at.searchEntry.SetPlaceHolder("Search files…")
	at.searchEntry.OnChanged = at.coordinator.TextChanged
	at.searchEntry.OnSubmitted = at.coordinator.Submit
	at.searchEntry.ActionItem = widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
		at.searchEntry.SetText("")
		at.coordinator.Clear()
	})

	at.pathLabel = widget.NewLabel("/" + at.folder)
	at.pathLabel.Truncation = fyne.TextTruncateEllipsis

	at.upBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), at.onUp)
	at.upBtn.Disable()

	at.fileList = NewFileList()
	at.fileList.OnOpenFolder = func(item models.FileItem) {
		at.openFolder(item.Path)
	}
	at.fileList.OnSelect = at.onFileSelected

	at.moreBtn = widget.NewButton("Load more", at.onLoadMore)
	at.moreBtn.Hide()

	at.uploadBtn = widget.NewButtonWithIcon("Upload", theme.UploadIcon(), at.onUpload)
	at.uploadBtn.Importance = widget.HighImportance
	at.downloadBtn = widget.NewButtonWithIcon("Download", theme.DownloadIcon(), at.onDownload)
	at.downloadBtn.Disable()
	at.cropBtn = widget.NewButtonWithIcon("Crop", theme.ViewFullScreenIcon(), at.onCrop)
	at.cropBtn.Disable()

	at.statusBar = NewStatusBar()

	header := container.NewBorder(nil, nil, at.upBtn,
		container.NewHBox(at.uploadBtn, at.downloadBtn, at.cropBtn),
		at.pathLabel,
	)

	content := container.NewBorder(
		container.NewVBox(at.searchEntry, header),
		container.NewVBox(at.moreBtn, at.statusBar),
		nil, nil,
		at.fileList,
	)

	at.Refresh()
	return content
}

// Close tears down the tab. The coordinator guarantees no search callback
// fires afterwards.
func (at *AccountTab) Close() {
	at.coordinator.Close()
}

// Refresh reloads the current folder from the provider.
func (at *AccountTab) Refresh() {
	at.mu.Lock()
	folder := at.folder
	at.mu.Unlock()
	at.loadFolder(folder, "")
}

// onSearchCommitted receives committed queries from the coordinator. Runs on
// the debounce timer goroutine, so UI updates go through fyne.Do inside
// renderEntries.
func (at *AccountTab) onSearchCommitted(query string) {
	at.mu.Lock()
	at.query = query
	at.mu.Unlock()

	at.logger.Debugf("search committed: %q", query)
	at.engine.Bus.PublishSearch(at.acct.ID, query)
	at.renderEntries()

	if query == "" {
		at.statusBar.SetInfo("Showing all files")
	} else {
		at.statusBar.SetInfo(fmt.Sprintf("Filtering by %q", query))
	}
}

// onSearchCleared fires when the user explicitly clears the search box.
func (at *AccountTab) onSearchCleared() {
	at.engine.Bus.PublishSearchCleared(at.acct.ID)
}

func (at *AccountTab) onUp() {
	at.mu.Lock()
	folder := at.folder
	at.mu.Unlock()

	root := strings.Trim(at.acct.RootPath, "/")
	if folder == root {
		return
	}
	parent := path.Dir(folder)
	if parent == "." || parent == "/" {
		parent = ""
	}
	at.openFolder(parent)
}

func (at *AccountTab) openFolder(folder string) {
	folder = strings.Trim(folder, "/")
	at.loadFolder(folder, "")
}

func (at *AccountTab) onLoadMore() {
	at.mu.Lock()
	folder := at.folder
	token := at.nextToken
	at.mu.Unlock()
	if token != "" {
		at.loadFolder(folder, token)
	}
}

// loadFolder fetches one listing page. When pageToken is empty the folder's
// entries are replaced, otherwise the page is appended.
func (at *AccountTab) loadFolder(folder, pageToken string) {
	at.statusBar.SetProgress("Loading " + displayPath(folder))

	go func() {
		provider, err := at.getProvider()
		if err != nil {
			at.statusBar.SetError(err.Error())
			return
		}

		page, err := provider.List(context.Background(), folder, pageToken)
		if err != nil {
			at.logger.Errorf("listing %s failed: %v", displayPath(folder), err)
			at.statusBar.SetError(fmt.Sprintf("Failed to list %s: %v", displayPath(folder), err))
			return
		}

		at.mu.Lock()
		if pageToken == "" {
			at.folder = folder
			at.entries = page.Items
			at.selected = nil
		} else {
			at.entries = append(at.entries, page.Items...)
		}
		at.nextToken = page.NextToken
		hasMore := page.NextToken != ""
		count := len(at.entries)
		at.mu.Unlock()

		fyne.Do(func() {
			at.pathLabel.SetText(displayPath(folder))
			if strings.Trim(folder, "/") == strings.Trim(at.acct.RootPath, "/") {
				at.upBtn.Disable()
			} else {
				at.upBtn.Enable()
			}
			if hasMore {
				at.moreBtn.Show()
			} else {
				at.moreBtn.Hide()
			}
			at.downloadBtn.Disable()
			at.cropBtn.Disable()
		})

		at.renderEntries()
		at.statusBar.SetInfo(fmt.Sprintf("%d entries", count))
	}()
}

// renderEntries applies the committed query to the folder entries and pushes
// the result into the list widget.
func (at *AccountTab) renderEntries() {
	at.mu.Lock()
	entries := make([]models.FileItem, len(at.entries))
	copy(entries, at.entries)
	query := at.query
	at.mu.Unlock()

	cfg := filter.FromQuery(query)
	cfg.FoldersFirst = true
	at.fileList.SetItems(filter.Apply(entries, cfg))
}

func (at *AccountTab) onFileSelected(item models.FileItem) {
	at.mu.Lock()
	at.selected = &item
	at.mu.Unlock()

	fyne.Do(func() {
		at.downloadBtn.Enable()
		if isImage(item.Name) {
			at.cropBtn.Enable()
		} else {
			at.cropBtn.Disable()
		}
	})
	at.statusBar.SetInfo(item.Name)
}

func (at *AccountTab) onUpload() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		localPath := reader.URI().Path()
		_ = reader.Close()

		provider, perr := at.getProvider()
		if perr != nil {
			at.statusBar.SetError(perr.Error())
			return
		}

		at.mu.Lock()
		folder := at.folder
		at.mu.Unlock()

		task, qerr := at.engine.Transfers.QueueUpload(provider, at.acct.ID, localPath, folder)
		if qerr != nil {
			at.statusBar.SetError(qerr.Error())
			return
		}
		at.statusBar.SetProgress("Uploading " + task.Name())
	}, at.window)
}

func (at *AccountTab) onDownload() {
	at.mu.Lock()
	selected := at.selected
	at.mu.Unlock()
	if selected == nil {
		return
	}
	item := *selected

	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		localPath := writer.URI().Path()
		_ = writer.Close()

		provider, perr := at.getProvider()
		if perr != nil {
			at.statusBar.SetError(perr.Error())
			return
		}

		task, qerr := at.engine.Transfers.QueueDownload(provider, at.acct.ID, item, localPath)
		if qerr != nil {
			at.statusBar.SetError(qerr.Error())
			return
		}
		at.statusBar.SetProgress("Downloading " + task.Name())
	}, at.window)
	saveDialog.SetFileName(item.Name)
	saveDialog.Show()
}

func (at *AccountTab) onCrop() {
	at.mu.Lock()
	selected := at.selected
	at.mu.Unlock()
	if selected == nil {
		return
	}
	ShowCropDialog(at.window, *selected, func(r crop.Rect) {
		at.statusBar.SetInfo(fmt.Sprintf("Crop %dx%d at %d,%d saved for %s", r.Width, r.Height, r.X, r.Y, selected.Name))
	})
}

// getProvider lazily connects to the account's storage backend.
func (at *AccountTab) getProvider() (storage.Provider, error) {
	at.mu.Lock()
	if at.provider != nil {
		p := at.provider
		at.mu.Unlock()
		return p, nil
	}
	at.mu.Unlock()

	p, err := cloud.NewProvider(context.Background(), at.engine.Accounts, at.acct.ID, at.engine.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect account %s: %w", at.acct.ID, err)
	}

	at.mu.Lock()
	at.provider = p
	at.mu.Unlock()
	return p, nil
}

func displayPath(folder string) string {
	return "/" + strings.Trim(folder, "/")
}

func isImage(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
		return true
	}
	return false
}
