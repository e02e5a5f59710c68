// Package config loads client configuration from the environment,
// with optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs to book one show. The user
// identity is passed in explicitly rather than read from ambient
// storage so the core stays testable.
type Config struct {
	APIBaseURL string // base URL of the Cinebook API (optional, has default)
	AuthToken  string // bearer token for authenticated endpoints (optional)
	UserID     string // user the booking is committed for
	MovieID    string // movie being booked
	TheaterID  string // theater whose layout is loaded
	ShowID     string // show whose availability and prices apply
	ShowTime   string // display-only show time for the summary
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL: os.Getenv("CINEBOOK_API"),
		AuthToken:  os.Getenv("CINEBOOK_TOKEN"),
		UserID:     os.Getenv("CINEBOOK_USER"),
		MovieID:    os.Getenv("CINEBOOK_MOVIE"),
		TheaterID:  os.Getenv("CINEBOOK_THEATER"),
		ShowID:     os.Getenv("CINEBOOK_SHOW"),
		ShowTime:   os.Getenv("CINEBOOK_SHOWTIME"),
	}

	var missing []string
	for _, required := range []struct {
		key   string
		value string
	}{
		{"CINEBOOK_USER", cfg.UserID},
		{"CINEBOOK_MOVIE", cfg.MovieID},
		{"CINEBOOK_THEATER", cfg.TheaterID},
		{"CINEBOOK_SHOW", cfg.ShowID},
	} {
		if strings.TrimSpace(required.value) == "" {
			missing = append(missing, required.key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}
