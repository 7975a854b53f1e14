// Package calendar resolves holiday and weekend context for target dates.
// The restaurant sits in Kiel, so demand reacts to holidays in
// Schleswig-Holstein, Hamburg and Denmark as well as national ones.
package calendar

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/dk"
)

// DayInfo captures the calendar context of a single date.
type DayInfo struct {
	Date time.Time

	// Weekday is Monday-indexed: Monday is 0, Sunday is 6.
	Weekday   int
	IsWeekend bool

	HolidayDE bool // national German holiday
	HolidaySH bool // holiday in Schleswig-Holstein
	HolidayHH bool // holiday in Hamburg
	HolidayDK bool // holiday in Denmark

	// Regional demand reacts to the Schleswig-Holstein calendar, so the
	// adjacency flags and bridge days derive from the SH holidays.
	DayBeforeHoliday bool
	DayAfterHoliday  bool
	BridgeDay        bool
}

// Calendar answers holiday questions for the regions the restaurant draws
// guests from.
type Calendar struct {
	de *cal.Calendar
	sh *cal.Calendar
	hh *cal.Calendar
	dk *cal.Calendar
}

// New builds the regional holiday calendars.
func New() *Calendar {
	national := &cal.Calendar{}
	national.AddHoliday(de.Holidays...)

	// Schleswig-Holstein and Hamburg both add Reformationstag to the
	// national set.
	sh := &cal.Calendar{}
	sh.AddHoliday(de.Holidays...)
	sh.AddHoliday(de.Reformationstag)

	hh := &cal.Calendar{}
	hh.AddHoliday(de.Holidays...)
	hh.AddHoliday(de.Reformationstag)

	denmark := &cal.Calendar{}
	denmark.AddHoliday(dk.Holidays...)

	return &Calendar{de: national, sh: sh, hh: hh, dk: denmark}
}

// MondayIndex converts Go's Sunday-first weekday to a Monday-first index.
func MondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

func isHoliday(c *cal.Calendar, date time.Time) bool {
	actual, _, _ := c.IsHoliday(date)
	return actual
}

// Describe resolves the full calendar context for a date.
func (c *Calendar) Describe(date time.Time) DayInfo {
	weekday := MondayIndex(date.Weekday())

	prev := date.AddDate(0, 0, -1)
	next := date.AddDate(0, 0, 1)

	info := DayInfo{
		Date:             date,
		Weekday:          weekday,
		IsWeekend:        weekday >= 5,
		HolidayDE:        isHoliday(c.de, date),
		HolidaySH:        isHoliday(c.sh, date),
		HolidayHH:        isHoliday(c.hh, date),
		HolidayDK:        isHoliday(c.dk, date),
		DayBeforeHoliday: isHoliday(c.sh, next),
		DayAfterHoliday:  isHoliday(c.sh, prev),
	}

	// A bridge day is a Friday after a Thursday holiday or a Monday
	// before a Tuesday holiday.
	switch weekday {
	case 4:
		info.BridgeDay = info.DayAfterHoliday
	case 0:
		info.BridgeDay = info.DayBeforeHoliday
	}

	return info
}
