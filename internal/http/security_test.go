// ABOUTME: Tests for the hardened client and server constructors
// ABOUTME: Checks the timeouts that guard against slow peers

package http

import (
	"net/http"
	"testing"
	"time"
)

func TestSecureHTTPClient(t *testing.T) {
	t.Parallel()

	c := SecureHTTPClient(5 * time.Second)
	if c.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport = %T, want *http.Transport", c.Transport)
	}
	if tr.TLSClientConfig == nil || tr.TLSClientConfig.MinVersion == 0 {
		t.Error("TLS minimum version not set")
	}
	if tr.ResponseHeaderTimeout == 0 || tr.TLSHandshakeTimeout == 0 {
		t.Error("transport phase timeouts not set")
	}
}

func TestSecureHTTPServer(t *testing.T) {
	t.Parallel()

	srv := SecureHTTPServer(http.NotFoundHandler(), "127.0.0.1:0")
	if srv.Addr != "127.0.0.1:0" || srv.Handler == nil {
		t.Errorf("server = %+v", srv)
	}
	if srv.ReadHeaderTimeout == 0 || srv.WriteTimeout == 0 || srv.IdleTimeout == 0 {
		t.Error("server timeouts not set")
	}
	if srv.MaxHeaderBytes != 1<<20 {
		t.Errorf("MaxHeaderBytes = %d", srv.MaxHeaderBytes)
	}
}
