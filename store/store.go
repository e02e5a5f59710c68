package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cinebook-cli/model"
)

const (
	layoutCacheTTL    = 24 * time.Hour
	billingCacheTTL   = 7 * 24 * time.Hour
	maxRecentBookings = 8
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// RecentBooking is one confirmed booking kept in local history.
type RecentBooking struct {
	ShowID   string    `json:"show_id"`
	Movie    string    `json:"movie"`
	Theater  string    `json:"theater"`
	ShowTime string    `json:"show_time"`
	Seats    []string  `json:"seats"`
	Amount   int       `json:"amount"`
	BookedAt time.Time `json:"booked_at"`
}

type bookingHistory struct {
	Bookings []RecentBooking `json:"bookings"`
}

// LoadLayoutCache returns the cached row layout for a theater and
// whether it is still fresh. Only the physical layout is cached;
// booked seats are always fetched live.
func LoadLayoutCache(theaterID string) ([]model.LayoutRow, bool, error) {
	path, err := cachePath(fmt.Sprintf("layout_%s.json", theaterID))
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.LayoutRow](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= layoutCacheTTL, nil
}

func SaveLayoutCache(theaterID string, layout []model.LayoutRow) error {
	path, err := cachePath(fmt.Sprintf("layout_%s.json", theaterID))
	if err != nil {
		return err
	}
	return saveCache(path, layout)
}

// LoadBillingCache returns the cached movie/theater names for a pair.
func LoadBillingCache(movieID string, theaterID string) (model.Billing, bool, error) {
	path, err := cachePath(fmt.Sprintf("billing_%s_%s.json", movieID, theaterID))
	if err != nil {
		return model.Billing{}, false, err
	}
	cache, err := loadCache[model.Billing](path)
	if err != nil {
		return model.Billing{}, false, err
	}
	fresh := time.Since(cache.UpdatedAt) <= billingCacheTTL &&
		cache.Data.MovieName != "" && cache.Data.TheaterName != ""
	return cache.Data, fresh, nil
}

func SaveBillingCache(movieID string, theaterID string, billing model.Billing) error {
	path, err := cachePath(fmt.Sprintf("billing_%s_%s.json", movieID, theaterID))
	if err != nil {
		return err
	}
	return saveCache(path, billing)
}

// LoadRecentBookings returns local booking history, newest first.
func LoadRecentBookings() ([]RecentBooking, error) {
	path, err := configPath("bookings.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history bookingHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("invalid booking history format: %w", err)
	}
	return history.Bookings, nil
}

// RememberBooking prepends a confirmed booking to local history.
func RememberBooking(entry RecentBooking) error {
	if entry.BookedAt.IsZero() {
		entry.BookedAt = time.Now()
	}
	history, _ := LoadRecentBookings()
	next := []RecentBooking{entry}
	for _, existing := range history {
		next = append(next, existing)
		if len(next) >= maxRecentBookings {
			break
		}
	}
	return saveRecentBookings(next)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	payload, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func saveRecentBookings(bookings []RecentBooking) error {
	path, err := configPath("bookings.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	history := bookingHistory{Bookings: bookings}
	payload, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cinebook-cli", name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cinebook-cli", name), nil
}
