package booking

// Selection is the ordered set of distinct seats the user has picked.
// It never contains a sold seat and never exceeds the required count.
type Selection []string

// Contains reports membership.
func (s Selection) Contains(seatID string) bool {
	for _, id := range s {
		if id == seatID {
			return true
		}
	}
	return false
}

// Toggle returns the selection after the user clicked seatID.
// Sold seats and toggles beyond the required count are no-ops, so the
// caller can forward every click without pre-checking.
func Toggle(sel Selection, seatID string, m *SeatMap, required int) Selection {
	if m.IsSold(seatID) {
		return sel
	}
	for i, id := range sel {
		if id == seatID {
			next := make(Selection, 0, len(sel)-1)
			next = append(next, sel[:i]...)
			return append(next, sel[i+1:]...)
		}
	}
	if len(sel) >= required {
		return sel
	}
	next := make(Selection, len(sel), len(sel)+1)
	copy(next, sel)
	return append(next, seatID)
}

// Total sums the per-seat prices of the selection.
func Total(sel Selection, m *SeatMap) (int, error) {
	total := 0
	for _, seatID := range sel {
		price, err := m.PriceOf(seatID)
		if err != nil {
			return 0, err
		}
		total += price
	}
	return total, nil
}

// IsComplete reports whether exactly the required number of seats is
// selected. Booking may only proceed when this holds.
func IsComplete(sel Selection, required int) bool {
	return required > 0 && len(sel) == required
}
