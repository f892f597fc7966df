package engine

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

const (
	probeTimeout       = 10 * time.Second
	segmentIdleTimeout = 60 * time.Second

	dialTimeout           = 30 * time.Second
	keepAliveDuration     = 30 * time.Second
	idleConnTimeout       = 90 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	maxIdleConns          = 100
	expectContinueTimeout = 1 * time.Second
)

var ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// newClient builds an http.Client tuned to carry numConns simultaneous
// streams to one origin. HTTP/2 is disabled so each segment rides its own TCP
// connection; keep-alive and a per-host connection cap keep retries from
// paying handshake and TLS setup again.
func newClient(numConns int) *http.Client {
	if numConns < 1 {
		numConns = 1
	}

	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: numConns + 2,
		MaxConnsPerHost:     numConns,

		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: segmentIdleTimeout,
		ExpectContinueTimeout: expectContinueTimeout,

		// Files are usually already compressed.
		DisableCompression: true,
		// Force HTTP/1.1 so the range workers get parallel TCP connections.
		ForceAttemptHTTP2: false,
		TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),

		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: keepAliveDuration,
		}).DialContext,
	}

	return &http.Client{Transport: transport}
}
