package httpclient

import (
	"crypto/tls"
	"net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/jodinathan/filedrive/internal/config"
)

// NewTransferClient creates an HTTP client tuned for large object transfers.
//
// Key characteristics:
//   - Proxy support (NewClient is the base)
//   - Large connection pool for concurrent transfers
//   - No overall timeout; operations carry their own context deadlines
//   - HTTP/2 where the proxy situation allows it, with a FILEDRIVE_NO_HTTP2
//     escape hatch
//   - Compression disabled: picker payloads are mostly already compressed
func NewTransferClient(cfg *config.Config) (*http.Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	tr, ok := client.Transport.(*http.Transport)
	if !ok {
		// NTLM mode wraps the transport; the inner tuning from NewClient
		// still applies, so just clear the overall timeout.
		client.Timeout = 0
		return client, nil
	}

	tr.MaxIdleConns = 512
	tr.MaxIdleConnsPerHost = 100
	tr.MaxConnsPerHost = 100
	tr.DisableCompression = true
	tr.ForceAttemptHTTP2 = true

	_ = http2.ConfigureTransport(tr)

	// Proxies often mishandle HTTP/2 multiplexing mid-transfer.
	proxyActive := false
	if cfg != nil {
		switch cfg.ProxyMode {
		case "no-proxy", "":
		case "system":
			proxyActive = os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
				os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
		default:
			proxyActive = true
		}
	}

	if proxyActive || os.Getenv("FILEDRIVE_NO_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
	}

	client.Transport = tr
	client.Timeout = 0

	return client, nil
}
