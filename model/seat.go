package model

import "fmt"

// SeatType is the closed set of seating tiers a theater row can carry.
type SeatType string

const (
	SeatTypePremium     SeatType = "PREMIUM"
	SeatTypeClassicPlus SeatType = "CLASSICPLUS"
	SeatTypeClassic     SeatType = "CLASSIC"
)

// ParseSeatType maps a raw API tier tag to a SeatType.
func ParseSeatType(raw string) (SeatType, error) {
	switch SeatType(raw) {
	case SeatTypePremium, SeatTypeClassicPlus, SeatTypeClassic:
		return SeatType(raw), nil
	case "EXECUTIVE":
		return SeatTypeClassicPlus, nil
	case "NORMAL":
		return SeatTypeClassic, nil
	default:
		return "", fmt.Errorf("unknown seat type %q", raw)
	}
}

type LayoutRow struct {
	RowLabel  string `json:"rowLabel"`
	SeatCount int    `json:"seatCount"`
	SeatType  string `json:"seatType"`
}

type ShowPrices struct {
	Prices map[string]int `json:"prices"`
}
