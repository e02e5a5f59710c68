package config

import (
	"strings"
	"testing"
)

func TestLoad_OK(t *testing.T) {
	t.Setenv("CINEBOOK_API", "http://localhost:8080")
	t.Setenv("CINEBOOK_TOKEN", "tok")
	t.Setenv("CINEBOOK_USER", "user-42")
	t.Setenv("CINEBOOK_MOVIE", "5")
	t.Setenv("CINEBOOK_THEATER", "7")
	t.Setenv("CINEBOOK_SHOW", "99")
	t.Setenv("CINEBOOK_SHOWTIME", "19:30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080" || cfg.UserID != "user-42" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MovieID != "5" || cfg.TheaterID != "7" || cfg.ShowID != "99" || cfg.ShowTime != "19:30" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("CINEBOOK_USER", "user-42")
	t.Setenv("CINEBOOK_MOVIE", "5")
	t.Setenv("CINEBOOK_THEATER", "")
	t.Setenv("CINEBOOK_SHOW", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing vars")
	}
	if !strings.Contains(err.Error(), "CINEBOOK_THEATER") || !strings.Contains(err.Error(), "CINEBOOK_SHOW") {
		t.Fatalf("error should name the missing vars, got %v", err)
	}
	if strings.Contains(err.Error(), "CINEBOOK_USER") {
		t.Fatalf("error should not name present vars, got %v", err)
	}
}
