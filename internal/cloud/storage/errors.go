package storage

import (
	"errors"
	"strings"
)

// Common storage operation errors
var (
	// ErrInsufficientSpace indicates there isn't enough disk space for the operation
	ErrInsufficientSpace = errors.New("insufficient disk space")
	// ErrNotFound indicates the requested object does not exist
	ErrNotFound = errors.New("object not found")
	// ErrCredentialsExpired indicates credentials could not be refreshed
	ErrCredentialsExpired = errors.New("storage credentials expired")
)

// IsDiskFullError checks if an error is likely caused by running out of disk
// space during a local file operation.
//
// Checks for common error strings across operating systems:
//   - Linux/Unix: "no space left on device", "enospc"
//   - Windows: "out of disk space", "insufficient disk space"
//   - Quota: "disk quota exceeded"
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	diskFullIndicators := []string{
		"no space left on device", // Linux/Unix
		"disk full",               // Generic
		"out of disk space",       // Windows
		"insufficient disk space", // Windows
		"not enough space",        // Generic
		"enospc",                  // Linux errno
		"disk quota exceeded",     // Quota systems
	}

	for _, indicator := range diskFullIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// IsNetworkError checks if an error is network-related and therefore worth
// retrying.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	networkIndicators := []string{
		"connection",    // connection refused, connection reset, etc.
		"timeout",       // i/o timeout, dial timeout, etc.
		"network",       // network unreachable, etc.
		"eof",           // unexpected EOF
		"broken pipe",   // broken pipe
		"tls handshake", // TLS handshake errors
	}

	for _, indicator := range networkIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// IsCredentialError checks if an error is authentication/authorization
// related, signalling that credentials need a refresh.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	credentialIndicators := []string{
		"403",                  // HTTP Forbidden
		"unauthorized",         // HTTP Unauthorized
		"expired",              // expired token/credential
		"expiredtoken",         // AWS specific
		"invalid token",        // invalid authentication
		"authenticationfailed", // Azure specific
	}

	for _, indicator := range credentialIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}
