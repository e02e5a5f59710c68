package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinebook-cli/booking"
	"cinebook-cli/model"
)

const (
	defaultBaseURL     = "https://api.cinebook.app/v1"
	defaultUserAgent   = "cinebook-cli"
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
)

var (
	// ErrPaymentDeclined is returned when the payment endpoint rejects
	// the charge.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrSeatConflict is returned when the booking endpoint reports one
	// of the requested seats was taken by someone else.
	ErrSeatConflict = errors.New("seat already taken")
)

// Client wraps HTTP access to the Cinebook API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	authToken   string
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "cinebook api error"
	}
	return fmt.Sprintf("cinebook api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// NewClient creates a new API client. If httpClient is nil, a default
// client is used; if baseURL is empty, the production endpoint is used.
func NewClient(httpClient *http.Client, baseURL string, authToken string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		authToken:   authToken,
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
	}
}

// FetchTheaterLayout fetches the row layout for a theater.
func (c *Client) FetchTheaterLayout(ctx context.Context, theaterID string) ([]model.LayoutRow, error) {
	if strings.TrimSpace(theaterID) == "" {
		return nil, errors.New("theater id is required")
	}
	endpoint := fmt.Sprintf("%s/theaters/%s/layout", c.baseURL, url.PathEscape(theaterID))

	var layout []model.LayoutRow
	if err := c.getJSON(ctx, endpoint, &layout); err != nil {
		return nil, err
	}
	if len(layout) == 0 {
		return nil, errors.New("theater has no seat layout")
	}
	return layout, nil
}

// FetchShowPrices fetches the per-tier prices in effect for a show.
func (c *Client) FetchShowPrices(ctx context.Context, showID string) (model.ShowPrices, error) {
	if strings.TrimSpace(showID) == "" {
		return model.ShowPrices{}, errors.New("show id is required")
	}
	endpoint := fmt.Sprintf("%s/shows/%s/prices", c.baseURL, url.PathEscape(showID))

	var prices model.ShowPrices
	if err := c.getJSON(ctx, endpoint, &prices); err != nil {
		return model.ShowPrices{}, err
	}
	if len(prices.Prices) == 0 {
		return model.ShowPrices{}, errors.New("show has no prices")
	}
	return prices, nil
}

// FetchBookedSeats fetches the seats already sold for a show. An empty
// list is valid: nothing sold yet.
func (c *Client) FetchBookedSeats(ctx context.Context, showID string) ([]string, error) {
	if strings.TrimSpace(showID) == "" {
		return nil, errors.New("show id is required")
	}
	endpoint := fmt.Sprintf("%s/shows/%s/seats/booked", c.baseURL, url.PathEscape(showID))

	var seats []string
	if err := c.getJSON(ctx, endpoint, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

// FetchBestsellerSeats fetches the seats tagged as popular for a show.
func (c *Client) FetchBestsellerSeats(ctx context.Context, showID string) ([]string, error) {
	if strings.TrimSpace(showID) == "" {
		return nil, errors.New("show id is required")
	}
	endpoint := fmt.Sprintf("%s/shows/%s/seats/bestsellers", c.baseURL, url.PathEscape(showID))

	var seats []string
	if err := c.getJSON(ctx, endpoint, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

// FetchMovieAndTheaterNames fetches the display names for the summary
// header and confirmation.
func (c *Client) FetchMovieAndTheaterNames(ctx context.Context, movieID string, theaterID string) (model.Billing, error) {
	if strings.TrimSpace(movieID) == "" || strings.TrimSpace(theaterID) == "" {
		return model.Billing{}, errors.New("movie id and theater id are required")
	}
	endpoint := fmt.Sprintf("%s/billing/movies/%s/theaters/%s", c.baseURL, url.PathEscape(movieID), url.PathEscape(theaterID))

	var billing model.Billing
	if err := c.getJSON(ctx, endpoint, &billing); err != nil {
		return model.Billing{}, err
	}
	if billing.MovieName == "" || billing.TheaterName == "" {
		return model.Billing{}, errors.New("movie or theater not found")
	}
	return billing, nil
}

// InitiatePayment charges the given amount. A 402 from the gateway
// maps to ErrPaymentDeclined.
func (c *Client) InitiatePayment(ctx context.Context, amount int) error {
	if amount <= 0 {
		return errors.New("payment amount must be positive")
	}
	endpoint := fmt.Sprintf("%s/payments", c.baseURL)

	err := c.postJSON(ctx, endpoint, model.PaymentRequest{Amount: amount}, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPaymentRequired {
		return fmt.Errorf("%w: %s", ErrPaymentDeclined, apiErr.Body)
	}
	return err
}

// CommitBooking durably reserves seats for a user against a show.
// A 409 means another user took at least one of the seats between
// selection and commit; it maps to ErrSeatConflict.
func (c *Client) CommitBooking(ctx context.Context, showID string, userID string, seats []string) error {
	if strings.TrimSpace(showID) == "" || strings.TrimSpace(userID) == "" {
		return errors.New("show id and user id are required")
	}
	if len(seats) == 0 {
		return errors.New("no seats to book")
	}
	endpoint := fmt.Sprintf("%s/shows/%s/bookings", c.baseURL, url.PathEscape(showID))

	var out model.BookingResponse
	err := c.postJSON(ctx, endpoint, model.BookingRequest{UserID: userID, Seats: seats}, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		return fmt.Errorf("%w: %s", ErrSeatConflict, apiErr.Body)
	}
	return err
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		c.setHeaders(req)

		res, err := c.httpClient.Do(req)
		if err != nil {
			if c.shouldRetryNetworkError(err) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return fmt.Errorf("request failed: %w", err)
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			apiErr := newAPIError(res, endpoint)
			if c.shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return apiErr
		}

		dec := json.NewDecoder(res.Body)
		err = dec.Decode(out)
		_ = res.Body.Close()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode response from %s: %w", endpoint, err)
		}
		return nil
	}

	return errors.New("request failed after retries")
}

// postJSON runs a single attempt. Payments and bookings are not
// idempotent, so posts are never retried.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(res, endpoint)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
		return nil
	}
	dec := json.NewDecoder(res.Body)
	err = dec.Decode(out)
	_ = res.Body.Close()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

func newAPIError(res *http.Response, endpoint string) *APIError {
	snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
	_ = res.Body.Close()
	return &APIError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Endpoint:   endpoint,
		Body:       strings.TrimSpace(string(snippet)),
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	delay := c.retryDelay(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := c.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	cap := c.retryCap
	if cap <= 0 {
		cap = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= cap/2 {
			return cap
		}
		delay *= 2
	}
	if delay > cap {
		return cap
	}
	return delay
}

var (
	_ booking.Catalog        = (*Client)(nil)
	_ booking.PaymentGateway = (*Client)(nil)
	_ booking.TicketService  = (*Client)(nil)
)
