// Package constants defines shared tuning values for FileDrive.
package constants

import (
	"time"
)

// Search defaults
const (
	// DefaultDebounceWindow - quiet period before a typed query is committed.
	// Chosen to feel instant while still collapsing bursts of keystrokes.
	DefaultDebounceWindow = 400 * time.Millisecond

	// MinDebounceWindow / MaxDebounceWindow - bounds for the configurable
	// debounce window. Values outside this range are clamped at load time.
	MinDebounceWindow = 50 * time.Millisecond
	MaxDebounceWindow = 5 * time.Second
)

// Storage operation thresholds
const (
	// MultipartThreshold - files larger than this use multipart/block upload (100 MB)
	// Used by both S3 multipart and Azure block blob uploads
	MultipartThreshold = 100 * 1024 * 1024

	// ChunkSize - size of each part for multipart uploads and ranged downloads (32 MB)
	// Smaller chunks give finer progress updates, larger chunks better throughput.
	ChunkSize = 32 * 1024 * 1024

	// MinPartSize - AWS S3 minimum part size (5 MB, except last part)
	// Azure has no equivalent minimum
	MinPartSize = 5 * 1024 * 1024

	// ListPageSize - max entries requested per listing page from a provider
	ListPageSize = 1000
)

// Retry configuration for transient provider errors
const (
	// MaxRetries - maximum number of retries for transient errors
	MaxRetries = 5

	// RetryInitialDelay - initial delay before first retry
	RetryInitialDelay = 200 * time.Millisecond

	// RetryMaxDelay - maximum delay between retries.
	// Exponential backoff caps at this value.
	RetryMaxDelay = 15 * time.Second
)

// Token refresh
const (
	// TokenRefreshWindow - refresh account tokens this long before expiry
	TokenRefreshWindow = 5 * time.Minute

	// TokenRequestTimeout - timeout for a single token endpoint round trip
	TokenRequestTimeout = 30 * time.Second
)

// HTTP transport tuning (shared by providers and the token client)
const (
	HTTPDialTimeout          = 30 * time.Second
	HTTPDialKeepAlive        = 30 * time.Second
	HTTPIdleConnTimeout      = 90 * time.Second
	HTTPTLSHandshakeTimeout  = 30 * time.Second
	HTTPExpectContinueTimeout = 5 * time.Second
)

// Event bus configuration
const (
	// EventBusDefaultBuffer - default channel buffer per subscriber
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - upper bound on subscriber buffer size
	EventBusMaxBuffer = 10000
)

// Transfer engine
const (
	// DefaultParallelTransfers - concurrent upload/download workers
	DefaultParallelTransfers = 3

	// MaxParallelTransfers - upper bound for the parallel_transfers setting
	MaxParallelTransfers = 16

	// TransferQueueMultiplier - queue capacity per worker before enqueue
	// starts rejecting new tasks
	TransferQueueMultiplier = 4
)

// DiskSpaceSafetyMargin - extra free space required beyond the file size
// before a download is allowed to start (100 MB).
const DiskSpaceSafetyMargin = 100 * 1024 * 1024
