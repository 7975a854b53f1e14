package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*echo.Echo, datastore.Interface) {
	t.Helper()

	settings := &conf.Settings{
		Forecast: conf.ForecastSettings{Horizon: 7},
		Output: conf.OutputSettings{
			SQLite: conf.SQLiteSettings{
				Enabled: true,
				Path:    filepath.Join(t.TempDir(), "api_test.db"),
			},
		},
	}
	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())

	e := echo.New()
	New(e, store, settings, nil)
	return e, store
}

func doRequest(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func seedPlan(t *testing.T, store datastore.Interface, date, runID string, runAt time.Time) {
	t.Helper()
	plan := &datastore.StaffingPlan{
		RunID:            runID,
		RunAt:            runAt,
		Date:             date,
		GuestLoad:        224,
		ReservedCovers:   150,
		PredictedWalkins: 74,
		TotalLaborHours:  94.0,
		Flags:            "low_confidence",
		Assignments: []datastore.ShiftAssignment{
			{Role: "service", ShiftType: "FULL", StartTime: "12:00", EndTime: "23:00", Headcount: 6},
			{Role: "service", ShiftType: "SPLIT", StartTime: "18:00", EndTime: "22:00", Headcount: 7},
		},
	}
	require.NoError(t, store.SaveStaffingPlan(plan))
}

func TestHealthz(t *testing.T) {
	e, _ := newTestController(t)

	rec := doRequest(e, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetPlanNotFound(t *testing.T) {
	e, _ := newTestController(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/plans/2026-08-22")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Code)
}

func TestGetPlanInvalidDate(t *testing.T) {
	e, _ := newTestController(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/plans/not-a-date")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPlanReturnsLatest(t *testing.T) {
	e, store := newTestController(t)

	base := time.Date(2026, time.August, 21, 6, 0, 0, 0, time.UTC)
	seedPlan(t, store, "2026-08-22", "run-1", base)
	seedPlan(t, store, "2026-08-22", "run-2", base.Add(time.Hour))

	rec := doRequest(e, http.MethodGet, "/api/v1/plans/2026-08-22")
	require.Equal(t, http.StatusOK, rec.Code)

	var plan PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "run-2", plan.RunID)
	assert.Equal(t, 224, plan.GuestLoad)
	assert.Equal(t, []string{"low_confidence"}, plan.Flags)
	require.Len(t, plan.Shifts, 2)
	assert.Equal(t, "FULL", plan.Shifts[0].ShiftType)
	assert.Equal(t, "SPLIT", plan.Shifts[1].ShiftType)
	assert.Equal(t, 7, plan.Shifts[1].Headcount)
}

func TestGetPlanHistory(t *testing.T) {
	e, store := newTestController(t)

	base := time.Date(2026, time.August, 21, 6, 0, 0, 0, time.UTC)
	seedPlan(t, store, "2026-08-22", "run-1", base)
	seedPlan(t, store, "2026-08-22", "run-2", base.Add(time.Hour))

	rec := doRequest(e, http.MethodGet, "/api/v1/plans/2026-08-22?history=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Date  string         `json:"date"`
		Plans []PlanResponse `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Plans, 2, "history returns every snapshot")
	assert.Equal(t, "run-1", body.Plans[0].RunID, "oldest first")
	assert.Equal(t, "run-2", body.Plans[1].RunID)
}

func TestGetPlansRange(t *testing.T) {
	e, store := newTestController(t)

	base := time.Date(2026, time.August, 21, 6, 0, 0, 0, time.UTC)
	seedPlan(t, store, "2026-08-22", "run-1", base)
	seedPlan(t, store, "2026-08-23", "run-1", base)
	seedPlan(t, store, "2026-08-30", "run-1", base)

	rec := doRequest(e, http.MethodGet, "/api/v1/plans?from=2026-08-22&to=2026-08-23")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		From  string         `json:"from"`
		To    string         `json:"to"`
		Plans []PlanResponse `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2026-08-22", body.From)
	require.Len(t, body.Plans, 2, "out-of-range plan excluded")
	assert.Equal(t, "2026-08-22", body.Plans[0].Date)
	assert.Equal(t, "2026-08-23", body.Plans[1].Date)
}

func TestGetForecasts(t *testing.T) {
	e, store := newTestController(t)

	runAt := time.Date(2026, time.August, 21, 6, 0, 0, 0, time.UTC)
	for h, date := range []string{"2026-08-22", "2026-08-23"} {
		require.NoError(t, store.SaveWalkinForecast(&datastore.WalkinForecast{
			RunID:        "run-1",
			RunAt:        runAt,
			TargetDate:   date,
			HorizonDays:  h,
			Prediction:   74,
			LowerBound:   69,
			UpperBound:   79,
			ModelVersion: "2026-07-01",
		}))
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/forecasts?from=2026-08-22&to=2026-08-23")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Forecasts []WalkinForecastResponse `json:"forecasts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Forecasts, 2)
	assert.Equal(t, "2026-08-22", body.Forecasts[0].TargetDate)
	assert.Equal(t, 74.0, body.Forecasts[0].Prediction)
	assert.Equal(t, "2026-07-01", body.Forecasts[0].ModelVersion)
}

func TestGetForecastsInvalidRange(t *testing.T) {
	e, _ := newTestController(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/forecasts?from=22.08.2026")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetWeather(t *testing.T) {
	e, store := newTestController(t)

	require.NoError(t, store.SaveWeatherForecasts([]datastore.WeatherForecast{
		{ForecastDate: "2026-08-22", DaysAhead: 0, TempMax: 22.0, PrecipSum: 0.5, CloudCover: 30.0, CreatedAt: time.Now()},
	}))

	rec := doRequest(e, http.MethodGet, "/api/v1/weather?from=2026-08-22&to=2026-08-22")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Weather []WeatherForecastResponse `json:"weather"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Weather, 1)
	assert.Equal(t, 22.0, body.Weather[0].TempMax)
}
