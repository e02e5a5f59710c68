package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinebook-cli/model"
)

type stubCatalog struct {
	layout    []model.LayoutRow
	prices    map[string]int
	booked    []string
	layoutErr error
	pricesErr error
	bookedErr error
}

func (s stubCatalog) FetchTheaterLayout(ctx context.Context, theaterID string) ([]model.LayoutRow, error) {
	return s.layout, s.layoutErr
}

func (s stubCatalog) FetchShowPrices(ctx context.Context, showID string) (model.ShowPrices, error) {
	return model.ShowPrices{Prices: s.prices}, s.pricesErr
}

func (s stubCatalog) FetchBookedSeats(ctx context.Context, showID string) ([]string, error) {
	return s.booked, s.bookedErr
}

func testCatalog() stubCatalog {
	return stubCatalog{
		layout: []model.LayoutRow{
			{RowLabel: "J", SeatCount: 12, SeatType: "PREMIUM"},
			{RowLabel: "G", SeatCount: 10, SeatType: "CLASSICPLUS"},
			{RowLabel: "C", SeatCount: 8, SeatType: "CLASSIC"},
		},
		prices: map[string]int{
			"PREMIUM":     250,
			"CLASSICPLUS": 230,
			"CLASSIC":     150,
		},
		booked: []string{"J6", "C2"},
	}
}

func loadTestMap(t *testing.T) *SeatMap {
	t.Helper()
	m, err := Load(context.Background(), testCatalog(), "theater-1", "show-1")
	require.NoError(t, err)
	return m
}

func TestLoad_OK(t *testing.T) {
	m := loadTestMap(t)

	assert.Equal(t, "theater-1", m.TheaterID())
	assert.Equal(t, "show-1", m.ShowID())
	assert.Equal(t, 30, m.SeatCount())
	assert.Equal(t, 2, m.SoldCount())

	rows := m.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "J", rows[0].Label)
	assert.Equal(t, model.SeatTypePremium, rows[0].Type)
	assert.Equal(t, 250, rows[0].Price)
	assert.Equal(t, "C", rows[2].Label)
}

func TestLoad_AllOrNothing(t *testing.T) {
	boom := errors.New("boom")

	for name, catalog := range map[string]stubCatalog{
		"layout": func() stubCatalog { c := testCatalog(); c.layoutErr = boom; return c }(),
		"prices": func() stubCatalog { c := testCatalog(); c.pricesErr = boom; return c }(),
		"booked": func() stubCatalog { c := testCatalog(); c.bookedErr = boom; return c }(),
	} {
		t.Run(name, func(t *testing.T) {
			m, err := Load(context.Background(), catalog, "theater-1", "show-1")
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrDataUnavailable)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestLoad_RejectsBadData(t *testing.T) {
	cases := map[string]func(*stubCatalog){
		"unknown tier":    func(c *stubCatalog) { c.layout[0].SeatType = "ROYAL" },
		"missing price":   func(c *stubCatalog) { delete(c.prices, "CLASSIC") },
		"zero price":      func(c *stubCatalog) { c.prices["PREMIUM"] = 0 },
		"bad row label":   func(c *stubCatalog) { c.layout[1].RowLabel = "g7" },
		"empty seat row":  func(c *stubCatalog) { c.layout[2].SeatCount = 0 },
		"duplicate row":   func(c *stubCatalog) { c.layout[1].RowLabel = "J" },
		"no rows at all":  func(c *stubCatalog) { c.layout = nil },
		"negativeSeatCnt": func(c *stubCatalog) { c.layout[0].SeatCount = -3 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			catalog := testCatalog()
			mutate(&catalog)
			m, err := Load(context.Background(), catalog, "theater-1", "show-1")
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrDataUnavailable)
		})
	}
}

func TestPriceOf(t *testing.T) {
	m := loadTestMap(t)

	price, err := m.PriceOf("J12")
	require.NoError(t, err)
	assert.Equal(t, 250, price)

	price, err = m.PriceOf("C1")
	require.NoError(t, err)
	assert.Equal(t, 150, price)

	for _, seatID := range []string{"Z1", "J", "J0", "J13", "Jx", "", "12"} {
		_, err := m.PriceOf(seatID)
		assert.ErrorIs(t, err, ErrUnknownSeat, "seat %q", seatID)
	}
}

func TestIsSold(t *testing.T) {
	m := loadTestMap(t)

	assert.True(t, m.IsSold("J6"))
	assert.True(t, m.IsSold("C2"))
	assert.False(t, m.IsSold("J1"))
	assert.False(t, m.IsSold("Z99"))
}

func TestRows_ReturnsCopy(t *testing.T) {
	m := loadTestMap(t)

	rows := m.Rows()
	rows[0].Price = 1

	fresh := m.Rows()
	assert.Equal(t, 250, fresh[0].Price)
}

func TestSeatID(t *testing.T) {
	assert.Equal(t, "J12", SeatID("J", 12))
	assert.Equal(t, "A1", SeatID("A", 1))
}
