package diskspace

import (
	"path/filepath"
	"testing"
)

// TestCheckSmallRequirementPasses verifies a tiny requirement against a real
// filesystem succeeds.
func TestCheckSmallRequirementPasses(t *testing.T) {
	target := filepath.Join(t.TempDir(), "download.bin")
	if err := Check(target, 1024, 0); err != nil {
		t.Errorf("Check(1KB) error = %v", err)
	}
}

// TestCheckAbsurdRequirementFails verifies an impossible requirement is
// rejected with a descriptive error.
func TestCheckAbsurdRequirementFails(t *testing.T) {
	target := filepath.Join(t.TempDir(), "download.bin")
	const exabyte = int64(1) << 60

	err := Check(target, exabyte, 0)
	if err == nil {
		t.Skip("filesystem reports no usable stats; nothing to assert")
	}

	ise, ok := err.(*InsufficientSpaceError)
	if !ok {
		t.Fatalf("error type = %T, want *InsufficientSpaceError", err)
	}
	if ise.RequiredBytes != exabyte {
		t.Errorf("RequiredBytes = %d", ise.RequiredBytes)
	}
	if ise.Error() == "" {
		t.Error("empty error string")
	}
}

// TestAvailableReportsPositive verifies free-space reporting on a tempdir.
func TestAvailableReportsPositive(t *testing.T) {
	target := filepath.Join(t.TempDir(), "x")
	if Available(target) <= 0 {
		t.Skip("filesystem reports no usable stats")
	}
}
