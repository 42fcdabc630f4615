package server

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7000": ":7000",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewHTTPServer_WriteTimeoutDefault(t *testing.T) {
	srv := newHTTPServer(":0", http.NotFoundHandler(), 0)
	if srv.WriteTimeout != defaultWriteTimeout {
		t.Fatalf("WriteTimeout = %v, want %v", srv.WriteTimeout, defaultWriteTimeout)
	}
	srv = newHTTPServer(":0", http.NotFoundHandler(), 5*time.Second)
	if srv.WriteTimeout != 5*time.Second || srv.MaxHeaderBytes != maxHeaderBytes {
		t.Fatalf("unexpected server config: %+v", srv)
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	var s Server
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown on idle server: %v", err)
	}
}
