package web // nolint:testpackage

import (
	"crosspointx/internal/config"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testQRServer() *Server {
	return &Server{config: &config.Config{
		Domain:   "crosspointx.app",
		WebToken: strings.Repeat("x", 32),
	}}
}

func TestCheckQRLink(t *testing.T) {
	s := testQRServer()

	signed, err := s.config.SignURL("https://crosspointx.app/checkin?player=A042", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.checkQRLink(httptest.NewRequest("GET", signed, nil)); err != nil {
		t.Errorf("valid link rejected: %s", err)
	}

	tampered := strings.Replace(signed, "A042", "A666", 1)
	if err := s.checkQRLink(httptest.NewRequest("GET", tampered, nil)); err == nil {
		t.Error("tampered link accepted")
	}
}

func TestCheckQRLinkExpired(t *testing.T) {
	s := testQRServer()

	signed, err := s.config.SignURL("https://crosspointx.app/checkin?player=A042", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	err = s.checkQRLink(httptest.NewRequest("GET", signed, nil))
	if !errors.Is(err, config.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}
