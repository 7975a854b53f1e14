package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMondayIndex(t *testing.T) {
	assert.Equal(t, 0, MondayIndex(time.Monday))
	assert.Equal(t, 4, MondayIndex(time.Friday))
	assert.Equal(t, 5, MondayIndex(time.Saturday))
	assert.Equal(t, 6, MondayIndex(time.Sunday))
}

func TestDescribe(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		date time.Time
		want DayInfo
	}{
		{
			name: "regular tuesday",
			date: date(2026, time.August, 25),
			want: DayInfo{Weekday: 1},
		},
		{
			name: "regular saturday",
			date: date(2026, time.August, 22),
			want: DayInfo{Weekday: 5, IsWeekend: true},
		},
		{
			name: "german unity day",
			date: date(2026, time.October, 3),
			want: DayInfo{
				Weekday: 5, IsWeekend: true,
				HolidayDE: true, HolidaySH: true, HolidayHH: true,
			},
		},
		{
			name: "reformation day is regional not national",
			date: date(2026, time.October, 31),
			want: DayInfo{
				Weekday: 5, IsWeekend: true,
				HolidaySH: true, HolidayHH: true,
			},
		},
		{
			name: "ascension day in both germany and denmark",
			date: date(2026, time.May, 14),
			want: DayInfo{
				Weekday:   3,
				HolidayDE: true, HolidaySH: true, HolidayHH: true, HolidayDK: true,
			},
		},
		{
			name: "friday after ascension is a bridge day",
			date: date(2026, time.May, 15),
			want: DayInfo{
				Weekday:         4,
				DayAfterHoliday: true,
				BridgeDay:       true,
			},
		},
		{
			name: "day before good friday",
			date: date(2026, time.April, 2),
			want: DayInfo{
				Weekday:          3,
				DayBeforeHoliday: true,
				HolidayDK:        true, // Maundy Thursday is a Danish holiday
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Describe(tt.date)

			assert.Equal(t, tt.want.Weekday, got.Weekday, "weekday")
			assert.Equal(t, tt.want.IsWeekend, got.IsWeekend, "weekend")
			assert.Equal(t, tt.want.HolidayDE, got.HolidayDE, "holiday DE")
			assert.Equal(t, tt.want.HolidaySH, got.HolidaySH, "holiday SH")
			assert.Equal(t, tt.want.HolidayHH, got.HolidayHH, "holiday HH")
			assert.Equal(t, tt.want.HolidayDK, got.HolidayDK, "holiday DK")
			assert.Equal(t, tt.want.DayBeforeHoliday, got.DayBeforeHoliday, "day before holiday")
			assert.Equal(t, tt.want.DayAfterHoliday, got.DayAfterHoliday, "day after holiday")
			assert.Equal(t, tt.want.BridgeDay, got.BridgeDay, "bridge day")
		})
	}
}

func TestBridgeDayMondayBeforeTuesdayHoliday(t *testing.T) {
	c := New()

	// 2029-12-31 is a Monday, 2030-01-01 (Neujahr) a Tuesday.
	got := c.Describe(date(2029, time.December, 31))
	assert.Equal(t, 0, got.Weekday)
	assert.True(t, got.DayBeforeHoliday)
	assert.True(t, got.BridgeDay)
}
