package randomfilm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/filmoteka/filmoteka-bot/internal/randomfilm"
)

func serve(t *testing.T, status int, body string) *randomfilm.Scraper {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	s, err := randomfilm.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

func TestRandomTitlePrefersPartAfterSlash(t *testing.T) {
	s := serve(t, http.StatusOK, `<html><body><h2> Начало / Inception </h2></body></html>`)
	title, err := s.RandomTitle(context.Background())
	if err != nil {
		t.Fatalf("RandomTitle returned error: %v", err)
	}
	if title != "Inception" {
		t.Errorf("title = %q, want %q", title, "Inception")
	}
}

func TestRandomTitleWithoutSlash(t *testing.T) {
	s := serve(t, http.StatusOK, `<html><body><h2>Inception</h2></body></html>`)
	title, err := s.RandomTitle(context.Background())
	if err != nil {
		t.Fatalf("RandomTitle returned error: %v", err)
	}
	if title != "Inception" {
		t.Errorf("title = %q, want %q", title, "Inception")
	}
}

func TestRandomTitleNoHeading(t *testing.T) {
	s := serve(t, http.StatusOK, `<html><body><p>nothing here</p></body></html>`)
	if _, err := s.RandomTitle(context.Background()); !errors.Is(err, randomfilm.ErrNoTitle) {
		t.Fatalf("expected ErrNoTitle, got %v", err)
	}
}

func TestRandomTitleBadStatus(t *testing.T) {
	s := serve(t, http.StatusServiceUnavailable, ``)
	if _, err := s.RandomTitle(context.Background()); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
