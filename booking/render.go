package booking

import "fmt"

// SeatState is what a seat should look like on screen.
type SeatState int

const (
	SeatAvailable SeatState = iota
	SeatBestseller
	SeatSelected
	SeatSold
)

func (s SeatState) String() string {
	switch s {
	case SeatAvailable:
		return "available"
	case SeatBestseller:
		return "bestseller"
	case SeatSelected:
		return "selected"
	case SeatSold:
		return "sold"
	default:
		return "unknown"
	}
}

// StateOf maps a seat to its render state. Precedence is strict:
// sold > selected > bestseller > available. A sold seat never renders
// selectable even when tagged bestseller, and selected styling wins
// over the bestseller tag.
func StateOf(m *SeatMap, sel Selection, bestsellers map[string]bool, seatID string) SeatState {
	if m.IsSold(seatID) {
		return SeatSold
	}
	if sel.Contains(seatID) {
		return SeatSelected
	}
	if bestsellers[seatID] {
		return SeatBestseller
	}
	return SeatAvailable
}

// InputLocked reports whether seat toggling must be disabled so the
// selection cannot mutate under a frozen attempt.
func InputLocked(p Phase) bool {
	return p == PhaseAwaitingPayment || p == PhaseAwaitingCommit
}

// FormatPrice renders an amount for display.
func FormatPrice(amount int) string {
	if amount <= 0 {
		return "-"
	}
	return fmt.Sprintf("₹%d", amount)
}
