package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbeServer(t *testing.T) {
	o := newOrigin(t, 12345)
	o.disposition = `attachment; filename=payload.tar.gz`

	result, err := probeServer(context.Background(), newClient(1), o.url())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if result.TotalBytes != 12345 {
		t.Errorf("TotalBytes = %d, want 12345", result.TotalBytes)
	}
	if result.Filename != "payload.tar.gz" {
		t.Errorf("Filename = %q, want payload.tar.gz", result.Filename)
	}
}

func TestProbeServerNoDisposition(t *testing.T) {
	o := newOrigin(t, 10)

	result, err := probeServer(context.Background(), newClient(1), o.url())
	if err != nil {
		t.Fatal(err)
	}
	if result.Filename != "file.bin" {
		t.Errorf("Filename = %q, want file.bin (from URL path)", result.Filename)
	}
}

func TestProbeServerNoSize(t *testing.T) {
	// Hijack the connection to answer without a Content-Length at all;
	// the normal ResponseWriter always supplies one for empty bodies.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("server does not support hijacking")
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			t.Error(err)
			return
		}
		buf.WriteString("HTTP/1.1 200 OK\r\nConnection: close\r\n\r\n")
		buf.Flush()
		conn.Close()
	}))
	defer srv.Close()

	_, err := probeServer(context.Background(), newClient(1), srv.URL)
	if !errors.Is(err, ErrUnknownSize) {
		t.Errorf("want ErrUnknownSize, got %v", err)
	}
}

func TestProbeServerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := probeServer(context.Background(), newClient(1), srv.URL)
	if err == nil {
		t.Fatal("probe succeeded against a 503 origin")
	}
	if !IsTransient(err) {
		t.Errorf("503 should be transient, got %v", err)
	}
}

func TestProbeServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := probeServer(context.Background(), newClient(1), url)
	if err == nil {
		t.Fatal("probe succeeded against a closed origin")
	}
	if !IsTransient(err) {
		t.Errorf("transport error should be transient, got %v", err)
	}
}
