//go:build windows

package diskspace

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// availableBytes reports free space available to the calling user on the
// volume containing path.
func availableBytes(path string) (int64, bool) {
	dir := filepath.Dir(path)

	dirPtr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0, false
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(dirPtr, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0, false
	}

	return int64(freeBytesAvailable), true
}
