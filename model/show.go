package model

type Billing struct {
	MovieName   string `json:"movieName"`
	TheaterName string `json:"theaterName"`
}

type PaymentRequest struct {
	Amount int `json:"amount"`
}

type BookingRequest struct {
	UserID string   `json:"userId"`
	Seats  []string `json:"seats"`
}

type BookingResponse struct {
	BookingID string `json:"bookingId"`
}
