package tui

import (
	"context"

	"cinebook-cli/booking"
	"cinebook-cli/model"
	"cinebook-cli/service"
	"cinebook-cli/store"
)

// cachedCatalog serves the theater layout from the local disk cache
// when fresh. Prices and booked seats always go to the server: the
// availability a session sees must be current as of load.
type cachedCatalog struct {
	client *service.Client
	force  bool
}

func (c cachedCatalog) FetchTheaterLayout(ctx context.Context, theaterID string) ([]model.LayoutRow, error) {
	if !c.force {
		if cached, fresh, err := store.LoadLayoutCache(theaterID); err == nil && fresh && len(cached) > 0 {
			return cached, nil
		}
	}
	layout, err := c.client.FetchTheaterLayout(ctx, theaterID)
	if err == nil && len(layout) > 0 {
		_ = store.SaveLayoutCache(theaterID, layout)
	}
	return layout, err
}

func (c cachedCatalog) FetchShowPrices(ctx context.Context, showID string) (model.ShowPrices, error) {
	return c.client.FetchShowPrices(ctx, showID)
}

func (c cachedCatalog) FetchBookedSeats(ctx context.Context, showID string) ([]string, error) {
	return c.client.FetchBookedSeats(ctx, showID)
}

var _ booking.Catalog = cachedCatalog{}

func loadBilling(ctx context.Context, client *service.Client, movieID string, theaterID string) (model.Billing, error) {
	if cached, fresh, err := store.LoadBillingCache(movieID, theaterID); err == nil && fresh {
		return cached, nil
	}
	billing, err := client.FetchMovieAndTheaterNames(ctx, movieID, theaterID)
	if err == nil {
		_ = store.SaveBillingCache(movieID, theaterID, billing)
	}
	return billing, err
}
