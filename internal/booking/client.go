// Package booking syncs reservations from the booking platform's GraphQL
// API and aggregates them into daily snapshots.
package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/errors"
)

// RequestTimeout defines the HTTP timeout for booking API requests.
const RequestTimeout = 30 * time.Second

// bookingsQuery pages through all bookings of a date range.
const bookingsQuery = `
query bookingsAnalytics($locationId: String!, $date: Date!, $endDate: Date!, $startingAfter: Date) {
    bookingsAnalytics(locationId: $locationId, date: $date, endDate: $endDate, startingAfter: $startingAfter) {
        cursor
        hasMore
        count
        bookings {
            _id
            date
            endDate
            people
            cancelled
            noShow
            walkIn
            source
            host
            rating
        }
    }
}`

// Booking is one reservation as returned by the platform. Timestamps are
// Unix epoch milliseconds.
type Booking struct {
	ID        string  `json:"_id"`
	Date      int64   `json:"date"`
	EndDate   int64   `json:"endDate"`
	People    int     `json:"people"`
	Cancelled bool    `json:"cancelled"`
	NoShow    bool    `json:"noShow"`
	WalkIn    bool    `json:"walkIn"`
	Source    *string `json:"source"`
	Host      *string `json:"host"`
	Rating    *int    `json:"rating"`
}

// Day returns the booking's calendar date in the given location.
func (b *Booking) Day(loc *time.Location) string {
	return time.UnixMilli(b.Date).In(loc).Format("2006-01-02")
}

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		BookingsAnalytics struct {
			Cursor   *int64    `json:"cursor"`
			HasMore  bool      `json:"hasMore"`
			Count    int       `json:"count"`
			Bookings []Booking `json:"bookings"`
		} `json:"bookingsAnalytics"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client talks to the booking platform's GraphQL API. Responses are
// cached for the configured TTL so repeated pipeline runs within a few
// minutes do not hammer the platform.
type Client struct {
	settings *conf.Settings
	client   *http.Client
	cache    *gocache.Cache
}

// NewClient creates a booking API client.
func NewClient(settings *conf.Settings) *Client {
	ttl := time.Duration(settings.Booking.CacheMinutes) * time.Minute
	var cache *gocache.Cache
	if ttl > 0 {
		cache = gocache.New(ttl, 2*ttl)
	}
	return &Client{
		settings: settings,
		client:   &http.Client{Timeout: RequestTimeout},
		cache:    cache,
	}
}

// fetchPage executes one GraphQL request, optionally continuing after a
// cursor.
func (c *Client) fetchPage(start, end string, cursor *int64) (*graphqlResponse, error) {
	variables := map[string]any{
		"locationId":    c.settings.Booking.LocationID,
		"date":          start,
		"endDate":       end,
		"startingAfter": cursor,
	}
	payload, err := json.Marshal(graphqlRequest{
		OperationName: "bookingsAnalytics",
		Query:         bookingsQuery,
		Variables:     variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding bookings request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.settings.Booking.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building bookings request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("account_token", c.settings.Booking.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting bookings: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("booking API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading bookings response: %w", err)
	}

	var parsed graphqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing bookings response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("booking API error: %s", parsed.Errors[0].Message)
	}
	return &parsed, nil
}

// FetchBookings pages through every booking in the inclusive ISO-8601
// datetime range, following the cursor until the platform reports no
// more pages.
func (c *Client) FetchBookings(start, end string) ([]Booking, error) {
	cacheKey := start + "|" + end
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			return cached.([]Booking), nil
		}
	}

	var all []Booking
	var cursor *int64
	for {
		page, err := c.fetchPage(start, end, cursor)
		if err != nil {
			return nil, errors.New(err).
				Component("booking").
				Category(errors.CategoryNetwork).
				Context("start", start).
				Context("end", end).
				Build()
		}

		analytics := &page.Data.BookingsAnalytics
		all = append(all, analytics.Bookings...)

		if !analytics.HasMore || analytics.Cursor == nil {
			break
		}
		cursor = analytics.Cursor
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, all, gocache.DefaultExpiration)
	}
	return all, nil
}

// CacheHit reports whether a range is currently cached. Used for metrics.
func (c *Client) CacheHit(start, end string) bool {
	if c.cache == nil {
		return false
	}
	_, found := c.cache.Get(start + "|" + end)
	return found
}
