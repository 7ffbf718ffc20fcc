package storage

import (
	"errors"
	"fmt"
	"testing"
)

// TestIsDiskFullError covers platform-specific disk-full strings.
func TestIsDiskFullError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("write /tmp/x: no space left on device"), true},
		{errors.New("ENOSPC"), true},
		{errors.New("There is not enough space on the disk"), true},
		{errors.New("disk quota exceeded"), true},
		{errors.New("permission denied"), false},
	}
	for _, tt := range tests {
		if got := IsDiskFullError(tt.err); got != tt.want {
			t.Errorf("IsDiskFullError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

// TestIsNetworkError covers retryable network failures.
func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("i/o timeout"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("TLS handshake failure"), true},
		{errors.New("file not found"), false},
	}
	for _, tt := range tests {
		if got := IsNetworkError(tt.err); got != tt.want {
			t.Errorf("IsNetworkError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

// TestIsCredentialError covers auth failures from both backends.
func TestIsCredentialError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fmt.Errorf("api error: %s", "ExpiredToken: the provided token has expired"), true},
		{errors.New("403 Forbidden"), true},
		{errors.New("RESPONSE 403: AuthenticationFailed"), true},
		{errors.New("no such bucket"), false},
	}
	for _, tt := range tests {
		if got := IsCredentialError(tt.err); got != tt.want {
			t.Errorf("IsCredentialError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
