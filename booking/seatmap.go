package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cinebook-cli/model"
)

var (
	// ErrDataUnavailable marks a seat-map load where any of the layout,
	// price or booked-seat fetches failed; partial data is never kept.
	ErrDataUnavailable = errors.New("seat map unavailable")

	// ErrUnknownSeat marks a seat identifier whose row label matches no
	// configured row. This is a data-integrity fault, not user input.
	ErrUnknownSeat = errors.New("unknown seat")
)

// Catalog is the remote source for one show's seating data.
type Catalog interface {
	FetchTheaterLayout(ctx context.Context, theaterID string) ([]model.LayoutRow, error)
	FetchShowPrices(ctx context.Context, showID string) (model.ShowPrices, error)
	FetchBookedSeats(ctx context.Context, showID string) ([]string, error)
}

// SeatRow is one physical row of the theater with its tier and the
// per-seat price in effect for the loaded show.
type SeatRow struct {
	Label     string
	Type      model.SeatType
	Price     int
	SeatCount int
}

// SeatMap is the read-only layout, pricing and availability for one
// (theater, show) pair. It is immutable after Load.
type SeatMap struct {
	theaterID string
	showID    string
	rows      []SeatRow
	byLabel   map[string]SeatRow
	booked    map[string]bool
}

// SeatID builds the identifier used everywhere for a seat, e.g. "J12".
func SeatID(rowLabel string, number int) string {
	return rowLabel + strconv.Itoa(number)
}

// Load fetches the row layout, show prices and booked seats and builds
// a validated seat map. All three fetches must succeed.
func Load(ctx context.Context, catalog Catalog, theaterID string, showID string) (*SeatMap, error) {
	layout, err := catalog.FetchTheaterLayout(ctx, theaterID)
	if err != nil {
		return nil, fmt.Errorf("%w: layout: %w", ErrDataUnavailable, err)
	}
	prices, err := catalog.FetchShowPrices(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("%w: prices: %w", ErrDataUnavailable, err)
	}
	bookedSeats, err := catalog.FetchBookedSeats(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("%w: booked seats: %w", ErrDataUnavailable, err)
	}

	m := &SeatMap{
		theaterID: theaterID,
		showID:    showID,
		rows:      make([]SeatRow, 0, len(layout)),
		byLabel:   make(map[string]SeatRow, len(layout)),
		booked:    make(map[string]bool, len(bookedSeats)),
	}

	for _, raw := range layout {
		row, err := buildRow(raw, prices)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		if _, exists := m.byLabel[row.Label]; exists {
			return nil, fmt.Errorf("%w: duplicate row %q", ErrDataUnavailable, row.Label)
		}
		m.rows = append(m.rows, row)
		m.byLabel[row.Label] = row
	}
	if len(m.rows) == 0 {
		return nil, fmt.Errorf("%w: theater has no seat layout", ErrDataUnavailable)
	}

	for _, seatID := range bookedSeats {
		m.booked[seatID] = true
	}
	return m, nil
}

func buildRow(raw model.LayoutRow, prices model.ShowPrices) (SeatRow, error) {
	if !validRowLabel(raw.RowLabel) {
		return SeatRow{}, fmt.Errorf("invalid row label %q", raw.RowLabel)
	}
	if raw.SeatCount <= 0 {
		return SeatRow{}, fmt.Errorf("row %s has no seats", raw.RowLabel)
	}
	seatType, err := model.ParseSeatType(raw.SeatType)
	if err != nil {
		return SeatRow{}, fmt.Errorf("row %s: %w", raw.RowLabel, err)
	}
	price, ok := prices.Prices[string(seatType)]
	if !ok || price <= 0 {
		return SeatRow{}, fmt.Errorf("row %s: no price for tier %s", raw.RowLabel, seatType)
	}
	return SeatRow{
		Label:     raw.RowLabel,
		Type:      seatType,
		Price:     price,
		SeatCount: raw.SeatCount,
	}, nil
}

func validRowLabel(label string) bool {
	return len(label) == 1 && label[0] >= 'A' && label[0] <= 'Z'
}

// TheaterID returns the theater the map was loaded for.
func (m *SeatMap) TheaterID() string { return m.theaterID }

// ShowID returns the show the map was loaded for.
func (m *SeatMap) ShowID() string { return m.showID }

// Rows returns the rows in the order the server laid them out,
// front (premium) to back. The order carries no other meaning.
func (m *SeatMap) Rows() []SeatRow {
	rows := make([]SeatRow, len(m.rows))
	copy(rows, m.rows)
	return rows
}

// PriceOf resolves a seat's price from its leading row label.
func (m *SeatMap) PriceOf(seatID string) (int, error) {
	row, ok := m.rowOf(seatID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSeat, seatID)
	}
	return row.Price, nil
}

// IsSold reports whether the seat was already booked when the map was
// loaded. Availability is not refreshed within a session.
func (m *SeatMap) IsSold(seatID string) bool {
	return m.booked[seatID]
}

// SoldCount returns how many seats were booked at load time.
func (m *SeatMap) SoldCount() int { return len(m.booked) }

// SeatCount returns the total number of seats in the theater.
func (m *SeatMap) SeatCount() int {
	total := 0
	for _, row := range m.rows {
		total += row.SeatCount
	}
	return total
}

func (m *SeatMap) rowOf(seatID string) (SeatRow, bool) {
	if len(seatID) < 2 {
		return SeatRow{}, false
	}
	label := seatID[:1]
	row, ok := m.byLabel[label]
	if !ok {
		return SeatRow{}, false
	}
	number, err := strconv.Atoi(seatID[1:])
	if err != nil || number < 1 || number > row.SeatCount {
		return SeatRow{}, false
	}
	return row, true
}
