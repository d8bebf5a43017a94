package server

import (
	"net/http"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	srv := New(":0", http.NotFoundHandler(), Timeouts{})
	if srv.ReadTimeout != 10*time.Second || srv.WriteTimeout != 15*time.Second || srv.IdleTimeout != time.Minute {
		t.Fatalf("timeouts = %v/%v/%v", srv.ReadTimeout, srv.WriteTimeout, srv.IdleTimeout)
	}
}

func TestNew_Overrides(t *testing.T) {
	srv := New(":0", http.NotFoundHandler(), Timeouts{Read: time.Second, Write: 2 * time.Second, Idle: 3 * time.Second})
	if srv.ReadTimeout != time.Second || srv.ReadHeaderTimeout != time.Second {
		t.Fatalf("read timeouts = %v/%v", srv.ReadTimeout, srv.ReadHeaderTimeout)
	}
	if srv.WriteTimeout != 2*time.Second || srv.IdleTimeout != 3*time.Second {
		t.Fatalf("write/idle = %v/%v", srv.WriteTimeout, srv.IdleTimeout)
	}
}
