package staffing

import (
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/errors"
)

// ErrUnderstaffedInfeasible indicates that a role's hard headcount cap
// prevents meeting the requirement curve. The optimizer still emits the
// best feasible plan; callers must surface the shortfall.
var ErrUnderstaffedInfeasible = errors.NewStd("staffing requirement infeasible under headcount cap")

// Optimizer lays out full and split shifts over the requirement curve.
type Optimizer struct {
	fullStart string
	fullEnd   string
	fullHours float64
	minSplit  float64
}

// NewOptimizer builds the optimizer from the shift shape configuration.
func NewOptimizer(cfg *conf.ShiftSettings) (*Optimizer, error) {
	start, err := parseClock(cfg.FullStart)
	if err != nil {
		return nil, errors.New(err).
			Component("staffing").
			Category(errors.CategoryConfiguration).
			Context("setting", "fullstart").
			Build()
	}
	end, err := parseClock(cfg.FullEnd)
	if err != nil {
		return nil, errors.New(err).
			Component("staffing").
			Category(errors.CategoryConfiguration).
			Context("setting", "fullend").
			Build()
	}
	if end <= start {
		return nil, errors.Newf("full shift ends before it starts").
			Component("staffing").
			Category(errors.CategoryOptimizer).
			Build()
	}
	return &Optimizer{
		fullStart: cfg.FullStart,
		fullEnd:   cfg.FullEnd,
		fullHours: end - start,
		minSplit:  cfg.MinSplitHours,
	}, nil
}

// splitCandidate is one contiguous bucket window considered for a split
// shift layered over a reduced full-shift baseline.
type splitCandidate struct {
	first, last int
	baseline    int
	splitHeads  int
	hours       float64
	cost        float64
}

// Optimize lays out shifts for one role so that every bucket's required
// headcount is met. A split shift over the peak window is chosen only
// when it strictly reduces total labor hours; ties go to the full-only
// layout because fewer shifts are simpler to operate.
//
// When the role's hard cap cannot cover the peak, the curve is clamped to
// the cap and the plan is returned together with ErrUnderstaffedInfeasible.
func (o *Optimizer) Optimize(req RoleRequirement, roleCfg conf.RoleSettings) (ShiftPlan, error) {
	plan := ShiftPlan{Role: req.Role}
	if len(req.Buckets) == 0 {
		return plan, nil
	}

	curve := make([]int, len(req.Buckets))
	for i := range req.Buckets {
		curve[i] = req.Buckets[i].Headcount
	}

	var infeasible error
	peak := req.Peak()
	if roleCfg.Max > 0 && peak > roleCfg.Max {
		plan.Shortfall = peak - roleCfg.Max
		for i := range curve {
			if curve[i] > roleCfg.Max {
				curve[i] = roleCfg.Max
			}
		}
		peak = roleCfg.Max
		infeasible = errors.New(ErrUnderstaffedInfeasible).
			Component("staffing").
			Category(errors.CategoryOptimizer).
			Context("role", req.Role).
			Context("shortfall", plan.Shortfall).
			Build()
	}

	if peak == 0 {
		return plan, infeasible
	}

	fullCost := float64(peak) * o.fullHours

	best := splitCandidate{cost: fullCost}
	haveSplit := false
	for first := 0; first < len(curve); first++ {
		for last := first; last < len(curve); last++ {
			c, ok := o.evaluateWindow(req.Buckets, curve, first, last)
			if !ok {
				continue
			}
			// Strictly cheaper only: a tie keeps the simpler
			// full-only layout.
			if c.cost < best.cost || (haveSplit && c.cost == best.cost && c.splitHeads < best.splitHeads) {
				best = c
				haveSplit = true
			}
		}
	}

	if !haveSplit {
		plan.Assignments = []Assignment{{
			Role:      req.Role,
			Type:      ShiftFull,
			Start:     o.fullStart,
			End:       o.fullEnd,
			Headcount: peak,
		}}
		plan.LaborHours = fullCost
		return plan, infeasible
	}

	if best.baseline > 0 {
		plan.Assignments = append(plan.Assignments, Assignment{
			Role:      req.Role,
			Type:      ShiftFull,
			Start:     o.fullStart,
			End:       o.fullEnd,
			Headcount: best.baseline,
		})
	}
	plan.Assignments = append(plan.Assignments, Assignment{
		Role:      req.Role,
		Type:      ShiftSplit,
		Start:     req.Buckets[best.first].Bucket.Start,
		End:       req.Buckets[best.last].Bucket.End,
		Headcount: best.splitHeads,
	})
	plan.LaborHours = best.cost
	return plan, infeasible
}

// evaluateWindow costs the layout where a split shift covers buckets
// [first..last] on top of a full-shift baseline sized for the buckets
// outside the window.
func (o *Optimizer) evaluateWindow(buckets []BucketRequirement, curve []int, first, last int) (splitCandidate, bool) {
	hours := buckets[last].Bucket.EndHour - buckets[first].Bucket.StartHour
	if hours < o.minSplit {
		return splitCandidate{}, false
	}

	baseline := 0
	for i := range curve {
		if i >= first && i <= last {
			continue
		}
		if curve[i] > baseline {
			baseline = curve[i]
		}
	}

	windowPeak := 0
	for i := first; i <= last; i++ {
		if curve[i] > windowPeak {
			windowPeak = curve[i]
		}
	}
	splitHeads := windowPeak - baseline
	if splitHeads <= 0 {
		return splitCandidate{}, false
	}

	return splitCandidate{
		first:      first,
		last:       last,
		baseline:   baseline,
		splitHeads: splitHeads,
		hours:      hours,
		cost:       float64(baseline)*o.fullHours + float64(splitHeads)*hours,
	}, true
}

// Covered verifies that a plan meets the requirement curve at every
// bucket. It exists so tests and the pipeline can assert the covering
// property instead of trusting the optimizer.
func Covered(plan *ShiftPlan, req *RoleRequirement) bool {
	for i := range req.Buckets {
		b := &req.Buckets[i]
		active := 0
		for j := range plan.Assignments {
			a := &plan.Assignments[j]
			start, err1 := parseClock(a.Start)
			end, err2 := parseClock(a.End)
			if err1 != nil || err2 != nil {
				return false
			}
			// A shift is active in a bucket when it spans it fully.
			if start <= b.Bucket.StartHour && end >= b.Bucket.EndHour {
				active += a.Headcount
			}
		}
		if active < b.Headcount {
			return false
		}
	}
	return true
}
