package s3

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// TestFolderPrefix verifies picker folder paths normalize to key prefixes.
func TestFolderPrefix(t *testing.T) {
	cases := []struct {
		folder string
		want   string
	}{
		{"", ""},
		{"/", ""},
		{"exports", "exports/"},
		{"/exports/", "exports/"},
		{"a/b/c", "a/b/c/"},
	}
	for _, tc := range cases {
		if got := folderPrefix(tc.folder); got != tc.want {
			t.Errorf("folderPrefix(%q) = %q, want %q", tc.folder, got, tc.want)
		}
	}
}

// TestCopyWithProgressReportsFractions verifies the copy helper reports
// monotonically increasing progress and copies all bytes.
func TestCopyWithProgressReportsFractions(t *testing.T) {
	src := strings.NewReader(strings.Repeat("x", 4096))
	var dst bytes.Buffer

	var fractions []float64
	err := copyWithProgress(&dst, src, 4096, func(f float64) {
		fractions = append(fractions, f)
	})
	if err != nil {
		t.Fatalf("copyWithProgress() error = %v", err)
	}

	if dst.Len() != 4096 {
		t.Errorf("copied %d bytes, want 4096", dst.Len())
	}
	if len(fractions) == 0 {
		t.Fatal("no progress reported")
	}
	last := fractions[len(fractions)-1]
	if last != 1.0 {
		t.Errorf("final fraction = %v, want 1.0", last)
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Errorf("progress went backwards: %v after %v", fractions[i], fractions[i-1])
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("no space left on device")
}

// TestCopyWithProgressClassifiesDiskFull verifies a full-disk write error is
// wrapped as an insufficient-space error.
func TestCopyWithProgressClassifiesDiskFull(t *testing.T) {
	src := strings.NewReader("data")

	err := copyWithProgress(failingWriter{}, src, 4, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "insufficient") {
		t.Errorf("error = %v, want insufficient-space classification", err)
	}
}
