// Package pipeline drives the rolling forecast horizon: for every date it
// assembles features, predicts walk-ins, derives staffing and persists
// the results as append-only snapshots.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skaiser/staffcast/internal/calendar"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/skaiser/staffcast/internal/errors"
	"github.com/skaiser/staffcast/internal/forecast"
	"github.com/skaiser/staffcast/internal/logging"
	"github.com/skaiser/staffcast/internal/observability/metrics"
	"github.com/skaiser/staffcast/internal/staffing"
	"github.com/skaiser/staffcast/internal/weather"
)

var (
	pipelineLogger   *slog.Logger
	pipelineLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	pipelineLevelVar.Set(slog.LevelInfo)

	pipelineLogger, _, err = logging.NewFileLogger("logs/pipeline.log", "pipeline", pipelineLevelVar)
	if err != nil {
		logging.Error("Failed to initialize pipeline file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: pipelineLevelVar})
		pipelineLogger = slog.New(fbHandler).With("service", "pipeline")
	}
}

// Plan quality flags persisted with each staffing plan.
const (
	FlagLowConfidence          = "low_confidence"
	FlagNoAIForecast           = "no_ai_forecast"
	FlagUnderstaffedInfeasible = "understaffed_infeasible"
)

// DateResult is the outcome of one date within a run.
type DateResult struct {
	Date  string
	Flags []string
	Err   error
}

// RunSummary reports one pipeline run over the full horizon.
type RunSummary struct {
	RunID    string
	RunAt    time.Time
	Results  []DateResult
	Failures int
}

// Pipeline computes walk-in forecasts and staffing plans for the rolling
// horizon. Each date is processed independently; one date's failure never
// aborts the rest of the horizon.
type Pipeline struct {
	settings   *conf.Settings
	db         datastore.Interface
	cal        *calendar.Calendar
	builder    *forecast.FeatureBuilder
	forecaster *forecast.Forecaster
	engine     *staffing.Engine
	optimizer  *staffing.Optimizer
	metrics    *metrics.PipelineMetrics
}

// New assembles the pipeline. A missing or invalid model artifact is not
// fatal: the pipeline runs in degraded mode on reservation data alone and
// flags every plan no_ai_forecast.
func New(settings *conf.Settings, db datastore.Interface, pipelineMetrics *metrics.PipelineMetrics) (*Pipeline, error) {
	engine, err := staffing.NewEngine(&settings.Staffing)
	if err != nil {
		return nil, err
	}
	optimizer, err := staffing.NewOptimizer(&settings.Staffing.Shifts)
	if err != nil {
		return nil, err
	}

	scorer := weather.NewScorer(settings.Weather.Score)

	var forecaster *forecast.Forecaster
	artifact, err := forecast.LoadArtifact(settings.Forecast.ModelPath)
	if err != nil {
		pipelineLogger.Warn("Walk-in model unavailable, running on reservations only",
			"path", settings.Forecast.ModelPath,
			"error", err)
	} else {
		forecaster = forecast.New(artifact, settings.Forecast.Band)
		pipelineLogger.Info("Walk-in model loaded",
			"version", artifact.Version,
			"features", len(artifact.FeatureCols))
	}

	return &Pipeline{
		settings:   settings,
		db:         db,
		cal:        calendar.New(),
		builder:    forecast.NewFeatureBuilder(scorer, settings.Forecast.Neutral),
		forecaster: forecaster,
		engine:     engine,
		optimizer:  optimizer,
		metrics:    pipelineMetrics,
	}, nil
}

// history carries the trailing averages fed into the feature builder.
// For future dates the last known averages apply, matching how the model
// was trained.
type history struct {
	reservations7d float64
	walkins7d      float64
}

func (p *Pipeline) trailingHistory(start time.Time) history {
	end := start.AddDate(0, 0, -1).Format("2006-01-02")
	begin := start.AddDate(0, 0, -7).Format("2006-01-02")

	snapshots, err := p.db.WalkInHistoryBetween(begin, end)
	if err != nil || len(snapshots) == 0 {
		return history{}
	}

	var reservations, walkins int
	for i := range snapshots {
		reservations += snapshots[i].ConfirmedCovers
		walkins += snapshots[i].WalkInCovers
	}
	n := float64(len(snapshots))
	return history{
		reservations7d: float64(reservations) / n,
		walkins7d:      float64(walkins) / n,
	}
}

// Run processes the full horizon starting at the given date. The returned
// summary lists every date's outcome; an error is returned only when the
// run could not start at all.
func (p *Pipeline) Run(start time.Time) (*RunSummary, error) {
	horizon := p.settings.Forecast.Horizon
	if horizon < 1 {
		horizon = 7
	}

	summary := &RunSummary{
		RunID: uuid.New().String(),
		RunAt: time.Now(),
	}
	hist := p.trailingHistory(start)

	runStart := time.Now()
	for h := 0; h < horizon; h++ {
		date := start.AddDate(0, 0, h)
		result := p.runDate(summary.RunID, summary.RunAt, date, h, hist)
		if result.Err != nil {
			summary.Failures++
			pipelineLogger.Error("Date failed",
				"run_id", summary.RunID,
				"date", result.Date,
				"error", result.Err)
		}
		summary.Results = append(summary.Results, result)
	}

	if p.metrics != nil {
		p.metrics.RecordRunDuration(time.Since(runStart).Seconds())
		switch {
		case summary.Failures == 0:
			p.metrics.RecordRun("success")
		case summary.Failures < len(summary.Results):
			p.metrics.RecordRun("partial")
		default:
			p.metrics.RecordRun("error")
		}
	}

	pipelineLogger.Info("Run finished",
		"run_id", summary.RunID,
		"dates", len(summary.Results),
		"failures", summary.Failures)

	return summary, nil
}

// weatherForDate loads the newest forecast row for a date. A missing row
// returns nil; the feature builder then degrades to neutral weather.
func (p *Pipeline) weatherForDate(date string) *weather.Observation {
	row, err := p.db.LatestWeatherForecast(date)
	if err != nil {
		return nil
	}
	return &weather.Observation{
		Date:          row.ForecastDate,
		TempMax:       row.TempMax,
		TempMin:       row.TempMin,
		PrecipSum:     row.PrecipSum,
		SunshineHours: row.SunshineHours,
		WindSpeedMax:  row.WindSpeedMax,
		CloudCover:    row.CloudCover,
		WeatherCode:   row.WeatherCode,
	}
}

// runDate computes and persists one date. The staffing plan is written in
// a single transaction after the whole computation succeeds, so a failure
// never leaves a partially committed plan.
func (p *Pipeline) runDate(runID string, runAt time.Time, date time.Time, horizonDays int, hist history) DateResult {
	dateStr := date.Format("2006-01-02")
	result := DateResult{Date: dateStr}
	flagged := make(map[string]bool)

	day := p.cal.Describe(date)

	reserved := 0
	if snap, err := p.db.LatestBookingSnapshot(dateStr); err == nil {
		reserved = snap.ConfirmedCovers
	}

	features := p.builder.Build(forecast.Inputs{
		Date:              date,
		Day:               day,
		Weather:           p.weatherForDate(dateStr),
		ReservedCovers:    reserved,
		Reservations7dAvg: hist.reservations7d,
		Walkin7dAvg:       hist.walkins7d,
	})

	guestLoad := reserved
	if p.forecaster == nil {
		flagged[FlagNoAIForecast] = true
	} else {
		pred, err := p.forecaster.Predict(features, horizonDays)
		if err != nil {
			// Model and feature schema have drifted apart. Predicting
			// from a wrong vector would be worse than skipping the date.
			result.Err = err
			return result
		}

		row := &datastore.WalkinForecast{
			RunID:         runID,
			RunAt:         runAt,
			TargetDate:    dateStr,
			HorizonDays:   horizonDays,
			Prediction:    pred.Point,
			LowerBound:    pred.Lower,
			UpperBound:    pred.Upper,
			ModelVersion:  pred.ModelVersion,
			LowConfidence: pred.LowConfidence,
		}
		if err := p.db.SaveWalkinForecast(row); err != nil {
			result.Err = err
			return result
		}
		if p.metrics != nil {
			p.metrics.RecordForecast()
		}

		guestLoad += int(pred.Point)
		if pred.LowConfidence {
			flagged[FlagLowConfidence] = true
		}
	}

	dayCtx := staffing.DayContext{
		Date:      date,
		Weekday:   day.Weekday,
		IsWeekend: day.IsWeekend,
	}
	requirements := p.engine.Requirements(guestLoad, dayCtx, p.settings.Staffing.Roles)

	var assignments []datastore.ShiftAssignment
	var laborHours float64
	for i := range requirements {
		req := &requirements[i]
		plan, err := p.optimizer.Optimize(*req, p.settings.Staffing.Roles[req.Role])
		if err != nil {
			if !errors.Is(err, staffing.ErrUnderstaffedInfeasible) {
				result.Err = err
				return result
			}
			// Best feasible plan is still used; the shortfall is
			// surfaced instead of silently dropped.
			flagged[FlagUnderstaffedInfeasible] = true
			pipelineLogger.Warn("Requirement infeasible under headcount cap",
				"date", dateStr,
				"role", req.Role,
				"shortfall", plan.Shortfall)
		}
		for j := range plan.Assignments {
			a := &plan.Assignments[j]
			assignments = append(assignments, datastore.ShiftAssignment{
				Role:      a.Role,
				ShiftType: a.Type,
				StartTime: a.Start,
				EndTime:   a.End,
				Headcount: a.Headcount,
			})
		}
		laborHours += plan.LaborHours
	}

	flags := make([]string, 0, len(flagged))
	for _, f := range []string{FlagLowConfidence, FlagNoAIForecast, FlagUnderstaffedInfeasible} {
		if flagged[f] {
			flags = append(flags, f)
			if p.metrics != nil {
				p.metrics.RecordFlag(f)
			}
		}
	}
	result.Flags = flags

	plan := &datastore.StaffingPlan{
		RunID:            runID,
		RunAt:            runAt,
		Date:             dateStr,
		GuestLoad:        guestLoad,
		ReservedCovers:   reserved,
		PredictedWalkins: guestLoad - reserved,
		TotalLaborHours:  laborHours,
		Flags:            strings.Join(flags, ","),
		Assignments:      assignments,
	}
	if err := p.db.SaveStaffingPlan(plan); err != nil {
		result.Err = err
		return result
	}
	if p.metrics != nil {
		p.metrics.RecordPlan()
		p.metrics.SetLaborHours(laborHours)
	}

	pipelineLogger.Debug("Date planned",
		"date", dateStr,
		"guest_load", guestLoad,
		"labor_hours", fmt.Sprintf("%.1f", laborHours),
		"flags", plan.Flags)

	return result
}
