// Package staffing turns a day's expected guest load into per-role
// headcount requirements and shift assignments.
package staffing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Shift types on a staffing plan.
const (
	ShiftFull  = "FULL"
	ShiftSplit = "SPLIT"
)

// Bucket is one time slice of the operating day.
type Bucket struct {
	Name      string
	Start     string // "HH:MM"
	End       string // "HH:MM"
	StartHour float64
	EndHour   float64
	LoadShare float64
}

// Hours is the bucket length in hours.
func (b *Bucket) Hours() float64 {
	return b.EndHour - b.StartHour
}

// DayContext carries the calendar facts the role policies react to.
type DayContext struct {
	Date      time.Time
	Weekday   int // Monday is 0
	IsWeekend bool
}

// WeekdayName returns the lowercase English weekday name used as a
// configuration key.
func (d DayContext) WeekdayName() string {
	names := [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	if d.Weekday < 0 || d.Weekday > 6 {
		return ""
	}
	return names[d.Weekday]
}

// BucketRequirement is the required headcount of one role during one
// bucket.
type BucketRequirement struct {
	Bucket    Bucket
	Headcount int
}

// RoleRequirement is one role's headcount curve over the operating day.
type RoleRequirement struct {
	Role    string
	Buckets []BucketRequirement
}

// Peak returns the highest bucket headcount of the curve.
func (r *RoleRequirement) Peak() int {
	peak := 0
	for i := range r.Buckets {
		if r.Buckets[i].Headcount > peak {
			peak = r.Buckets[i].Headcount
		}
	}
	return peak
}

// Assignment is one scheduled shift of a staffing plan.
type Assignment struct {
	Role      string
	Type      string // ShiftFull or ShiftSplit
	Start     string // "HH:MM"
	End       string // "HH:MM"
	Headcount int
}

// ShiftPlan is the optimized shift layout for one role on one day.
type ShiftPlan struct {
	Role        string
	Assignments []Assignment
	LaborHours  float64

	// Shortfall is the headcount missing at the peak when the role's
	// hard cap makes the requirement infeasible.
	Shortfall int
}

// parseClock parses "HH:MM" into fractional hours since midnight.
func parseClock(s string) (float64, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 24 {
		return 0, fmt.Errorf("invalid hour in clock time %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in clock time %q", s)
	}
	return float64(hours) + float64(minutes)/60, nil
}
