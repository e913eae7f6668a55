// ABOUTME: Hardened HTTP client and server constructors shared by the API client and dev server
// ABOUTME: Bounded dial, handshake, header and idle timeouts; TLS 1.2 minimum on outbound calls

package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// SecureHTTPClient creates an HTTP client whose whole request is bounded by
// timeout and whose connection phases have their own limits.
func SecureHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			IdleConnTimeout:       30 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
		},
	}
}

// SecureHTTPServer creates an HTTP server that cannot be held open by slow
// clients.
func SecureHTTPServer(handler http.Handler, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
