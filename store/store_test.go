package store

import (
	"fmt"
	"testing"

	"cinebook-cli/model"
)

func setTestDirs(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
}

func TestLayoutCache_RoundTrip(t *testing.T) {
	setTestDirs(t)

	layout := []model.LayoutRow{
		{RowLabel: "J", SeatCount: 12, SeatType: "PREMIUM"},
		{RowLabel: "C", SeatCount: 8, SeatType: "CLASSIC"},
	}
	if err := SaveLayoutCache("theater-1", layout); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, fresh, err := LoadLayoutCache("theater-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !fresh {
		t.Fatal("expected freshly written cache to be fresh")
	}
	if len(got) != 2 || got[0].RowLabel != "J" || got[1].SeatCount != 8 {
		t.Fatalf("unexpected layout: %+v", got)
	}
}

func TestLayoutCache_MissIsNotFresh(t *testing.T) {
	setTestDirs(t)

	got, fresh, err := LoadLayoutCache("never-saved")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fresh {
		t.Fatal("missing cache must not be fresh")
	}
	if got != nil {
		t.Fatalf("expected nil layout, got %+v", got)
	}
}

func TestLayoutCache_PerTheater(t *testing.T) {
	setTestDirs(t)

	if err := SaveLayoutCache("theater-1", []model.LayoutRow{{RowLabel: "A", SeatCount: 4, SeatType: "CLASSIC"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, fresh, err := LoadLayoutCache("theater-2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fresh {
		t.Fatal("cache for another theater must not be reused")
	}
}

func TestBillingCache_RoundTrip(t *testing.T) {
	setTestDirs(t)

	billing := model.Billing{MovieName: "Interstellar", TheaterName: "Galaxy Cinemas"}
	if err := SaveBillingCache("5", "7", billing); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, fresh, err := LoadBillingCache("5", "7")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !fresh {
		t.Fatal("expected freshly written cache to be fresh")
	}
	if got != billing {
		t.Fatalf("unexpected billing: %+v", got)
	}
}

func TestBillingCache_EmptyNamesNotFresh(t *testing.T) {
	setTestDirs(t)

	if err := SaveBillingCache("5", "7", model.Billing{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, fresh, err := LoadBillingCache("5", "7")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fresh {
		t.Fatal("cache with empty names must not be fresh")
	}
}

func TestRecentBookings_Empty(t *testing.T) {
	setTestDirs(t)

	history, err := LoadRecentBookings()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}
}

func TestRememberBooking_NewestFirst(t *testing.T) {
	setTestDirs(t)

	first := RecentBooking{ShowID: "show-1", Movie: "Interstellar", Seats: []string{"J1", "J2"}, Amount: 500}
	second := RecentBooking{ShowID: "show-2", Movie: "Dune", Seats: []string{"C3"}, Amount: 150}

	if err := RememberBooking(first); err != nil {
		t.Fatalf("remember first: %v", err)
	}
	if err := RememberBooking(second); err != nil {
		t.Fatalf("remember second: %v", err)
	}

	history, err := LoadRecentBookings()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].ShowID != "show-2" || history[1].ShowID != "show-1" {
		t.Fatalf("expected newest first, got %+v", history)
	}
	if history[0].BookedAt.IsZero() {
		t.Fatal("expected BookedAt to be filled in")
	}
}

func TestRememberBooking_TrimsHistory(t *testing.T) {
	setTestDirs(t)

	for i := 0; i < maxRecentBookings+3; i++ {
		entry := RecentBooking{ShowID: fmt.Sprintf("show-%d", i), Amount: 100}
		if err := RememberBooking(entry); err != nil {
			t.Fatalf("remember %d: %v", i, err)
		}
	}

	history, err := LoadRecentBookings()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(history) != maxRecentBookings {
		t.Fatalf("expected history trimmed to %d, got %d", maxRecentBookings, len(history))
	}
	if history[0].ShowID != fmt.Sprintf("show-%d", maxRecentBookings+2) {
		t.Fatalf("expected latest booking first, got %+v", history[0])
	}
}
