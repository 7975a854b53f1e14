package booking

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/skaiser/staffcast/internal/errors"
	"github.com/skaiser/staffcast/internal/logging"
	"github.com/skaiser/staffcast/internal/observability/metrics"
)

var (
	bookingLogger   *slog.Logger
	bookingLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	bookingLevelVar.Set(slog.LevelInfo)

	bookingLogger, _, err = logging.NewFileLogger("logs/booking.log", "booking", bookingLevelVar)
	if err != nil {
		logging.Error("Failed to initialize booking file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: bookingLevelVar})
		bookingLogger = slog.New(fbHandler).With("service", "booking")
	}
}

// sourceWidget marks bookings made through the online widget.
const sourceWidget = "widget"

// DailyAggregate is the per-target-date rollup of all bookings seen on a
// snapshot date.
type DailyAggregate struct {
	TargetDate      string
	Reservations    int
	ConfirmedCovers int
	CancelledCovers int
	OnlineCovers    int
	InternalCovers  int
	WalkInCovers    int
}

// Aggregate rolls bookings up into one aggregate per calendar date.
// Confirmed covers exclude cancellations and no-shows; cover channels
// split into online widget, walk-in, and internally entered bookings.
func Aggregate(bookings []Booking, loc *time.Location) []DailyAggregate {
	byDate := make(map[string]*DailyAggregate)

	for i := range bookings {
		b := &bookings[i]
		day := b.Day(loc)

		agg, ok := byDate[day]
		if !ok {
			agg = &DailyAggregate{TargetDate: day}
			byDate[day] = agg
		}

		agg.Reservations++

		if b.Cancelled {
			agg.CancelledCovers += b.People
			continue
		}
		if b.NoShow {
			continue
		}

		agg.ConfirmedCovers += b.People
		switch {
		case b.Source != nil && *b.Source == sourceWidget:
			agg.OnlineCovers += b.People
		case b.WalkIn:
			agg.WalkInCovers += b.People
		case b.Source == nil:
			agg.InternalCovers += b.People
		}
	}

	aggregates := make([]DailyAggregate, 0, len(byDate))
	for _, agg := range byDate {
		aggregates = append(aggregates, *agg)
	}
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].TargetDate < aggregates[j].TargetDate
	})
	return aggregates
}

// Service fetches bookings and persists daily snapshots.
type Service struct {
	client   *Client
	db       datastore.Interface
	settings *conf.Settings
	metrics  *metrics.BookingMetrics
}

// NewService creates a booking sync service.
func NewService(settings *conf.Settings, db datastore.Interface, bookingMetrics *metrics.BookingMetrics) *Service {
	return &Service{
		client:   NewClient(settings),
		db:       db,
		settings: settings,
		metrics:  bookingMetrics,
	}
}

// Snapshot fetches the booking horizon as of the snapshot date and
// appends one snapshot row per target date. Snapshots are never updated;
// the accumulated history carries the demand velocity signal.
func (s *Service) Snapshot(snapshotDate time.Time) (int, error) {
	loc, err := time.LoadLocation(s.settings.Restaurant.Timezone)
	if err != nil {
		return 0, errors.New(fmt.Errorf("loading timezone: %w", err)).
			Component("booking").
			Category(errors.CategoryConfiguration).
			Context("timezone", s.settings.Restaurant.Timezone).
			Build()
	}

	horizon := s.settings.Booking.HorizonDays
	if horizon <= 0 {
		horizon = 60
	}

	day := snapshotDate.In(loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, horizon).Add(24*time.Hour - time.Second)

	fetchStart := time.Now()
	cached := s.client.CacheHit(start.Format(time.RFC3339), end.Format(time.RFC3339))
	bookings, err := s.client.FetchBookings(start.Format(time.RFC3339), end.Format(time.RFC3339))
	if s.metrics != nil {
		if cached {
			s.metrics.RecordCacheLookup("hit")
		} else {
			s.metrics.RecordCacheLookup("miss")
		}
		s.metrics.RecordSyncDuration(time.Since(fetchStart).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSync("error")
		}
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.RecordSync("success")
	}

	aggregates := Aggregate(bookings, loc)
	snapshotDay := start.Format("2006-01-02")

	rows := make([]datastore.BookingSnapshot, 0, len(aggregates))
	for i := range aggregates {
		a := &aggregates[i]
		rows = append(rows, datastore.BookingSnapshot{
			SnapshotDate:    snapshotDay,
			TargetDate:      a.TargetDate,
			Reservations:    a.Reservations,
			ConfirmedCovers: a.ConfirmedCovers,
			CancelledCovers: a.CancelledCovers,
			OnlineCovers:    a.OnlineCovers,
			InternalCovers:  a.InternalCovers,
			WalkInCovers:    a.WalkInCovers,
		})
	}

	if err := s.db.SaveBookingSnapshots(rows); err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.RecordSnapshots(len(rows))
	}

	bookingLogger.Info("Booking snapshot saved",
		"snapshot_date", snapshotDay,
		"bookings", len(bookings),
		"target_dates", len(rows))

	return len(rows), nil
}
