package api

import (
	"net/http"
	"testing"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
)

func TestNewServerUsesConfiguredPort(t *testing.T) {
	handler := http.NewServeMux()
	srv := NewServer(&config.Config{App: config.AppConfig{Port: "5000"}}, handler)

	if srv.Addr != ":5000" {
		t.Fatalf("expected :5000 got %s", srv.Addr)
	}
	if srv.Handler != handler {
		t.Fatal("expected handler to be wired")
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Fatal("expected read header timeout")
	}
}
