package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/skaiser/staffcast/internal/datastore"
	"gorm.io/gorm"
)

// ShiftResponse is one shift of a staffing plan.
type ShiftResponse struct {
	Role      string `json:"role"`
	ShiftType string `json:"shift_type"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Headcount int    `json:"headcount"`
}

// PlanResponse is one staffing plan snapshot.
type PlanResponse struct {
	Date             string          `json:"date"`
	RunID            string          `json:"run_id"`
	RunAt            time.Time       `json:"run_at"`
	GuestLoad        int             `json:"guest_load"`
	ReservedCovers   int             `json:"reserved_covers"`
	PredictedWalkins int             `json:"predicted_walkins"`
	TotalLaborHours  float64         `json:"total_labor_hours"`
	Flags            []string        `json:"flags"`
	Shifts           []ShiftResponse `json:"shifts"`
}

// GetPlans returns the newest staffing plan per date in the requested
// range.
func (c *Controller) GetPlans(ctx echo.Context) error {
	from, to, err := c.dateRange(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
	}

	rows, err := c.DS.LatestStaffingPlansBetween(from, to)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load staffing plans", http.StatusInternalServerError)
	}

	plans := make([]PlanResponse, 0, len(rows))
	for i := range rows {
		plans = append(plans, planResponse(&rows[i]))
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"from":  from,
		"to":    to,
		"plans": plans,
	})
}

// GetPlan returns the newest staffing plan for one date. With
// ?history=true every plan snapshot ever computed for the date is
// returned, oldest first.
func (c *Controller) GetPlan(ctx echo.Context) error {
	date := ctx.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.HandleError(ctx, err, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
	}

	if ctx.QueryParam("history") == "true" {
		rows, err := c.DS.StaffingPlansForDate(date)
		if err != nil {
			return c.HandleError(ctx, err, "Failed to load staffing plans", http.StatusInternalServerError)
		}
		plans := make([]PlanResponse, 0, len(rows))
		for i := range rows {
			plans = append(plans, planResponse(&rows[i]))
		}
		return ctx.JSON(http.StatusOK, map[string]any{
			"date":  date,
			"plans": plans,
		})
	}

	plan, err := c.DS.LatestStaffingPlan(date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, errNotFound, "No staffing plan for date", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load staffing plan", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, planResponse(plan))
}

func planResponse(row *datastore.StaffingPlan) PlanResponse {
	flags := []string{}
	if row.Flags != "" {
		flags = strings.Split(row.Flags, ",")
	}

	shifts := make([]ShiftResponse, 0, len(row.Assignments))
	for i := range row.Assignments {
		a := &row.Assignments[i]
		shifts = append(shifts, ShiftResponse{
			Role:      a.Role,
			ShiftType: a.ShiftType,
			Start:     a.StartTime,
			End:       a.EndTime,
			Headcount: a.Headcount,
		})
	}

	return PlanResponse{
		Date:             row.Date,
		RunID:            row.RunID,
		RunAt:            row.RunAt,
		GuestLoad:        row.GuestLoad,
		ReservedCovers:   row.ReservedCovers,
		PredictedWalkins: row.PredictedWalkins,
		TotalLaborHours:  row.TotalLaborHours,
		Flags:            flags,
		Shifts:           shifts,
	}
}
