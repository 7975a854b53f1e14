package staffing

import (
	"testing"
	"time"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStaffingSettings() *conf.StaffingSettings {
	return &conf.StaffingSettings{
		Buckets: []conf.BucketSettings{
			{Name: "lunch", Start: "12:00", End: "15:00", LoadShare: 0.25},
			{Name: "afternoon", Start: "15:00", End: "18:00", LoadShare: 0.10},
			{Name: "dinner", Start: "18:00", End: "22:00", LoadShare: 0.55},
			{Name: "late", Start: "22:00", End: "23:00", LoadShare: 0.10},
		},
		Shifts: conf.ShiftSettings{
			FullStart:     "12:00",
			FullEnd:       "23:00",
			MinSplitHours: 3.0,
		},
		Roles: map[string]conf.RoleSettings{
			"kitchen": {Min: 2, GuestsPerHead: 80},
			"pizza":   {Min: 1, StepThreshold: 120, StepSize: 100},
			"bar":     {Min: 1, Baseline: 2, LowGuestMax: 100, WeekendPressure: 200},
			"service": {Min: 1, CoversPerServer: 18, WeekdayOverrides: map[string]int{"monday": 22}},
			"runner":  {Min: 1, GuestsPerHead: 100},
		},
	}
}

func saturday() DayContext {
	return DayContext{
		Date:      time.Date(2026, time.August, 22, 0, 0, 0, 0, time.UTC),
		Weekday:   5,
		IsWeekend: true,
	}
}

func monday() DayContext {
	return DayContext{
		Date:    time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC),
		Weekday: 0,
	}
}

func TestRolePolicies(t *testing.T) {
	roles := testStaffingSettings().Roles

	tests := []struct {
		name      string
		role      string
		guestLoad int
		day       DayContext
		want      int
	}{
		{name: "pizza below threshold", role: "pizza", guestLoad: 100, day: monday(), want: 1},
		{name: "pizza at threshold", role: "pizza", guestLoad: 120, day: monday(), want: 2},
		{name: "pizza one step above", role: "pizza", guestLoad: 220, day: saturday(), want: 3},
		{name: "pizza two steps above", role: "pizza", guestLoad: 330, day: saturday(), want: 4},

		{name: "bar quiet day", role: "bar", guestLoad: 80, day: monday(), want: 1},
		{name: "bar weekday baseline", role: "bar", guestLoad: 150, day: monday(), want: 2},
		{name: "bar busy weekend", role: "bar", guestLoad: 220, day: saturday(), want: 3},
		{name: "bar calm weekend", role: "bar", guestLoad: 150, day: saturday(), want: 2},

		{name: "service saturday", role: "service", guestLoad: 220, day: saturday(), want: 13}, // ceil(220/18)
		{name: "service monday override", role: "service", guestLoad: 220, day: monday(), want: 10}, // ceil(220/22)
		{name: "service empty day", role: "service", guestLoad: 0, day: monday(), want: 1},

		{name: "kitchen proportional", role: "kitchen", guestLoad: 220, day: saturday(), want: 3},
		{name: "kitchen minimum", role: "kitchen", guestLoad: 50, day: monday(), want: 2},
		{name: "runner proportional", role: "runner", guestLoad: 220, day: saturday(), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := newPolicy(tt.role, roles[tt.role])
			assert.Equal(t, tt.want, policy.RequiredHeadcount(tt.guestLoad, tt.day))
		})
	}
}

func TestRequirementsCurve(t *testing.T) {
	cfg := testStaffingSettings()
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	requirements := engine.Requirements(220, saturday(), cfg.Roles)

	var service *RoleRequirement
	for i := range requirements {
		if requirements[i].Role == "service" {
			service = &requirements[i]
		}
	}
	require.NotNil(t, service)
	require.Len(t, service.Buckets, 4)

	// Day headcount 13 applies in full at the dinner peak and scales
	// down by load share elsewhere.
	assert.Equal(t, "lunch", service.Buckets[0].Bucket.Name)
	assert.Equal(t, 6, service.Buckets[0].Headcount)  // ceil(13 * 0.25/0.55)
	assert.Equal(t, 3, service.Buckets[1].Headcount)  // ceil(13 * 0.10/0.55)
	assert.Equal(t, 13, service.Buckets[2].Headcount) // dinner peak
	assert.Equal(t, 3, service.Buckets[3].Headcount)

	// Every role is present and respects its minimum in every bucket.
	assert.Len(t, requirements, 5)
	for _, r := range requirements {
		roleMin := cfg.Roles[r.Role].Min
		for _, b := range r.Buckets {
			assert.GreaterOrEqual(t, b.Headcount, roleMin, "role %s bucket %s", r.Role, b.Bucket.Name)
		}
	}
}

func TestOptimizeChoosesSplitWhenCheaper(t *testing.T) {
	cfg := testStaffingSettings()
	engine, err := NewEngine(cfg)
	require.NoError(t, err)
	optimizer, err := NewOptimizer(&cfg.Shifts)
	require.NoError(t, err)

	requirements := engine.Requirements(220, saturday(), cfg.Roles)
	var service RoleRequirement
	for i := range requirements {
		if requirements[i].Role == "service" {
			service = requirements[i]
		}
	}

	plan, err := optimizer.Optimize(service, cfg.Roles["service"])
	require.NoError(t, err)
	require.Len(t, plan.Assignments, 2)

	full := plan.Assignments[0]
	split := plan.Assignments[1]
	assert.Equal(t, ShiftFull, full.Type)
	assert.Equal(t, 6, full.Headcount)
	assert.Equal(t, ShiftSplit, split.Type)
	assert.Equal(t, "18:00", split.Start)
	assert.Equal(t, "22:00", split.End)
	assert.Equal(t, 7, split.Headcount)

	// 6 full shifts of 11h plus 7 peak shifts of 4h beat 13 full shifts.
	assert.InDelta(t, 94.0, plan.LaborHours, 0.001)
	assert.Less(t, plan.LaborHours, 13*11.0)

	assert.True(t, Covered(&plan, &service), "every bucket must be covered")
}

func TestOptimizeFlatCurveStaysFullOnly(t *testing.T) {
	cfg := testStaffingSettings()
	optimizer, err := NewOptimizer(&cfg.Shifts)
	require.NoError(t, err)

	buckets, err := NewEngine(cfg)
	require.NoError(t, err)

	req := RoleRequirement{Role: "kitchen"}
	for _, b := range buckets.Buckets() {
		req.Buckets = append(req.Buckets, BucketRequirement{Bucket: b, Headcount: 3})
	}

	plan, err := optimizer.Optimize(req, cfg.Roles["kitchen"])
	require.NoError(t, err)
	require.Len(t, plan.Assignments, 1, "no split can beat a flat curve")
	assert.Equal(t, ShiftFull, plan.Assignments[0].Type)
	assert.Equal(t, 3, plan.Assignments[0].Headcount)
	assert.InDelta(t, 33.0, plan.LaborHours, 0.001)
	assert.True(t, Covered(&plan, &req))
}

func TestOptimizeRespectsMinSplitHours(t *testing.T) {
	cfg := testStaffingSettings()
	cfg.Shifts.MinSplitHours = 6.0
	optimizer, err := NewOptimizer(&cfg.Shifts)
	require.NoError(t, err)

	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	// Peak only in the one-hour late bucket: too short for a split.
	req := RoleRequirement{Role: "bar"}
	heads := []int{1, 1, 1, 4}
	for i, b := range engine.Buckets() {
		req.Buckets = append(req.Buckets, BucketRequirement{Bucket: b, Headcount: heads[i]})
	}

	plan, err := optimizer.Optimize(req, cfg.Roles["bar"])
	require.NoError(t, err)

	for _, a := range plan.Assignments {
		if a.Type != ShiftSplit {
			continue
		}
		start, perr := parseClock(a.Start)
		require.NoError(t, perr)
		end, perr := parseClock(a.End)
		require.NoError(t, perr)
		assert.GreaterOrEqual(t, end-start, 6.0, "split shift below minimum length")
	}
	assert.True(t, Covered(&plan, &req))
}

func TestOptimizeUnderstaffedInfeasible(t *testing.T) {
	cfg := testStaffingSettings()
	optimizer, err := NewOptimizer(&cfg.Shifts)
	require.NoError(t, err)

	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	req := RoleRequirement{Role: "service"}
	heads := []int{6, 3, 13, 3}
	for i, b := range engine.Buckets() {
		req.Buckets = append(req.Buckets, BucketRequirement{Bucket: b, Headcount: heads[i]})
	}

	capped := conf.RoleSettings{Min: 1, Max: 10, CoversPerServer: 18}
	plan, err := optimizer.Optimize(req, capped)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnderstaffedInfeasible))
	assert.Equal(t, 3, plan.Shortfall)
	require.NotEmpty(t, plan.Assignments, "best feasible plan is still emitted")

	// The emitted plan covers the clamped curve.
	clamped := req
	clamped.Buckets = nil
	for i, b := range engine.Buckets() {
		h := heads[i]
		if h > 10 {
			h = 10
		}
		clamped.Buckets = append(clamped.Buckets, BucketRequirement{Bucket: b, Headcount: h})
	}
	assert.True(t, Covered(&plan, &clamped))
}

func TestOptimizeNeverExceedsFullOnlyCost(t *testing.T) {
	cfg := testStaffingSettings()
	optimizer, err := NewOptimizer(&cfg.Shifts)
	require.NoError(t, err)

	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	curves := [][]int{
		{1, 1, 1, 1},
		{2, 1, 5, 2},
		{4, 4, 4, 1},
		{0, 0, 3, 0},
		{6, 3, 13, 3},
		{5, 2, 2, 2},
	}
	for _, heads := range curves {
		req := RoleRequirement{Role: "service"}
		peak := 0
		for i, b := range engine.Buckets() {
			req.Buckets = append(req.Buckets, BucketRequirement{Bucket: b, Headcount: heads[i]})
			if heads[i] > peak {
				peak = heads[i]
			}
		}

		plan, err := optimizer.Optimize(req, conf.RoleSettings{})
		require.NoError(t, err)
		assert.LessOrEqual(t, plan.LaborHours, float64(peak)*11.0, "curve %v", heads)
		assert.True(t, Covered(&plan, &req), "curve %v", heads)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "12:00", want: 12.0},
		{in: "22:30", want: 22.5},
		{in: "00:00", want: 0.0},
		{in: "25:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 0.0001, tt.in)
	}
}
