package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// MultiUI renders several concurrent transfer bars using mpb. Outside a
// terminal the bars are discarded and callers fall back to plain log lines
// through Writer().
type MultiUI struct {
	progress   *mpb.Progress
	isTerminal bool
	totalFiles int
	started    int32 // atomic index for display ordering
}

// FileBar is the handle for one file's bar.
type FileBar struct {
	bar       *mpb.Bar
	ui        *MultiUI
	index     int
	name      string
	size      int64
	retries   int32
	startTime time.Time
}

// NewMultiUI creates a multi-bar UI for the given number of files.
func NewMultiUI(totalFiles int) *MultiUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(100),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &MultiUI{
		progress:   p,
		isTerminal: isTerminal,
		totalFiles: totalFiles,
	}
}

// IsTerminal reports whether bars are actually rendered.
func (u *MultiUI) IsTerminal() bool {
	return u.isTerminal
}

// Writer returns a writer that prints above active bars, or stderr when not
// in a terminal.
func (u *MultiUI) Writer() io.Writer {
	if u.isTerminal {
		return u.progress
	}
	return os.Stderr
}

// Wait blocks until every bar completes.
func (u *MultiUI) Wait() {
	u.progress.Wait()
}

// AddFileBar creates a bar for one file transfer.
func (u *MultiUI) AddFileBar(localPath string, size int64) *FileBar {
	index := int(atomic.AddInt32(&u.started, 1))
	name := truncatePath(localPath, 2)

	fb := &FileBar{
		ui:        u,
		index:     index,
		name:      name,
		size:      size,
		startTime: time.Now(),
	}

	fb.bar = u.progress.New(size,
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(s decor.Statistics) string {
				retries := atomic.LoadInt32(&fb.retries)
				base := fmt.Sprintf("[%d/%d] %s (%.1f MiB)",
					fb.index, u.totalFiles, fb.name, float64(fb.size)/(1024*1024))
				if retries > 0 {
					base += fmt.Sprintf(" retry %d", retries)
				}
				return base
			}),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.AverageSpeed(decor.SizeB1024(0), " % .1f", decor.WC{W: 12}),
		),
	)

	return fb
}

// UpdateProgress moves the bar to the given fraction (0.0 to 1.0).
func (fb *FileBar) UpdateProgress(fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	fb.bar.SetCurrent(int64(fraction * float64(fb.size)))
}

// SetRetry bumps the retry counter shown in the bar label.
func (fb *FileBar) SetRetry(count int) {
	atomic.StoreInt32(&fb.retries, int32(count))
}

// Complete finishes the bar and prints a one-line summary above it.
func (fb *FileBar) Complete(err error) {
	elapsed := time.Since(fb.startTime).Round(time.Millisecond)

	if err != nil {
		fmt.Fprintf(fb.ui.Writer(), "✗ %s failed after %s: %v\n", fb.name, elapsed, err)
		fb.bar.Abort(true)
		return
	}
	// SetTotal with the trigger flag marks the bar complete even for
	// zero-size files, which never reach their total via SetCurrent.
	fb.bar.SetTotal(fb.size, true)
	fmt.Fprintf(fb.ui.Writer(), "✓ %s done in %s\n", fb.name, elapsed)
}

// truncatePath keeps the last n components of a path for display.
func truncatePath(path string, n int) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= n {
		return path
	}
	return ".../" + strings.Join(parts[len(parts)-n:], "/")
}
