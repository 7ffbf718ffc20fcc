// Package httpclient builds the HTTP clients shared by the storage
// providers and the account token refresher.
package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	ntlmssp "github.com/Azure/go-ntlmssp"

	"github.com/jodinathan/filedrive/internal/config"
	"github.com/jodinathan/filedrive/internal/constants"
)

// NewClient configures an HTTP client with proxy settings from the config.
func NewClient(cfg *config.Config) (*http.Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   constants.HTTPDialTimeout,
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
	}

	mode := ""
	if cfg != nil {
		mode = strings.ToLower(cfg.ProxyMode)
	}

	switch mode {
	case "no-proxy", "":
		transport.Proxy = nil

	case "system":
		transport.Proxy = http.ProxyFromEnvironment

	case "basic":
		proxyURL, err := buildProxyURL(cfg, true)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)

	case "ntlm":
		proxyURL, err := buildProxyURL(cfg, false)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		// NTLM negotiation wraps the transport; callers that need to tune
		// the inner transport must do so before this point.
		return &http.Client{
			Transport: ntlmssp.Negotiator{RoundTripper: transport},
		}, nil

	default:
		return nil, fmt.Errorf("unknown proxy mode %q", cfg.ProxyMode)
	}

	return &http.Client{Transport: transport}, nil
}

// buildProxyURL assembles the proxy URL from config fields. Credentials are
// embedded only for basic auth; NTLM carries them in the negotiation.
func buildProxyURL(cfg *config.Config, embedCreds bool) (*url.URL, error) {
	if cfg.ProxyHost == "" {
		return nil, fmt.Errorf("proxy mode %q requires proxy_host", cfg.ProxyMode)
	}
	host := cfg.ProxyHost
	if cfg.ProxyPort > 0 {
		host = fmt.Sprintf("%s:%d", cfg.ProxyHost, cfg.ProxyPort)
	}
	u := &url.URL{Scheme: "http", Host: host}
	if embedCreds && cfg.ProxyUser != "" {
		u.User = url.UserPassword(cfg.ProxyUser, cfg.ProxyPass)
	}
	return u, nil
}
