// Package diskspace checks available disk space before downloads start,
// so a picked file fails fast instead of half-filling the disk.
package diskspace

import (
	"fmt"
)

// InsufficientSpaceError indicates that there is not enough disk space available.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	requiredMB := float64(e.RequiredBytes) / (1024 * 1024)
	availableMB := float64(e.AvailableBytes) / (1024 * 1024)
	return fmt.Sprintf("insufficient disk space for %s: need %.2f MB, have %.2f MB available",
		e.Path, requiredMB, availableMB)
}

// Check verifies there is room for requiredBytes plus the safety margin at
// the filesystem containing targetPath. When the filesystem cannot be
// queried (network mounts, odd virtual filesystems) the check passes and
// the operation is left to fail naturally.
func Check(targetPath string, requiredBytes, safetyMargin int64) error {
	available, ok := availableBytes(targetPath)
	if !ok {
		return nil
	}

	required := requiredBytes + safetyMargin
	if available < required {
		return &InsufficientSpaceError{
			Path:           targetPath,
			RequiredBytes:  required,
			AvailableBytes: available,
		}
	}
	return nil
}

// Available returns the free space in bytes for the filesystem containing
// the given path, or 0 when it cannot be determined.
func Available(path string) int64 {
	available, _ := availableBytes(path)
	return available
}
