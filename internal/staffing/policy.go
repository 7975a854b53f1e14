package staffing

import (
	"math"
	"sort"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/errors"
)

// RolePolicy computes the day-level headcount one role needs for an
// expected guest load. New roles plug in without touching the optimizer.
type RolePolicy interface {
	Name() string
	RequiredHeadcount(guestLoad int, day DayContext) int
}

// newPolicy selects the policy implementation for a configured role.
// Roles without a dedicated policy scale proportionally with guest load.
func newPolicy(name string, cfg conf.RoleSettings) RolePolicy {
	switch name {
	case "pizza":
		return &stepwisePolicy{name: name, cfg: cfg}
	case "bar":
		return &pressurePolicy{name: name, cfg: cfg}
	case "service":
		return &coverRatioPolicy{name: name, cfg: cfg}
	default:
		return &proportionalPolicy{name: name, cfg: cfg}
	}
}

// stepwisePolicy staffs a station that scales in discrete steps once the
// guest load crosses a threshold. Used for the pizza station: one person
// handles the oven up to the threshold, then each additional load
// increment adds a head.
type stepwisePolicy struct {
	name string
	cfg  conf.RoleSettings
}

func (p *stepwisePolicy) Name() string { return p.name }

func (p *stepwisePolicy) RequiredHeadcount(guestLoad int, day DayContext) int {
	head := p.cfg.Min
	if p.cfg.StepThreshold > 0 && guestLoad >= p.cfg.StepThreshold {
		head = p.cfg.Min + 1
		if p.cfg.StepSize > 0 {
			head += (guestLoad - p.cfg.StepThreshold) / p.cfg.StepSize
		}
	}
	return head
}

// pressurePolicy staffs the bar: a weekday baseline, reduced on quiet
// days, plus one extra head on busy weekend nights.
type pressurePolicy struct {
	name string
	cfg  conf.RoleSettings
}

func (p *pressurePolicy) Name() string { return p.name }

func (p *pressurePolicy) RequiredHeadcount(guestLoad int, day DayContext) int {
	if p.cfg.LowGuestMax > 0 && guestLoad <= p.cfg.LowGuestMax {
		return p.cfg.Min
	}
	head := p.cfg.Baseline
	if head < p.cfg.Min {
		head = p.cfg.Min
	}
	if day.IsWeekend && p.cfg.WeekendPressure > 0 && guestLoad > p.cfg.WeekendPressure {
		head++
	}
	return head
}

// coverRatioPolicy staffs service: one server per configured number of
// covers, with per-weekday ratio overrides for days with different
// spending patterns.
type coverRatioPolicy struct {
	name string
	cfg  conf.RoleSettings
}

func (p *coverRatioPolicy) Name() string { return p.name }

func (p *coverRatioPolicy) RequiredHeadcount(guestLoad int, day DayContext) int {
	covers := p.cfg.CoversPerServer
	if override, ok := p.cfg.WeekdayOverrides[day.WeekdayName()]; ok && override > 0 {
		covers = override
	}
	if covers <= 0 {
		return p.cfg.Min
	}
	head := int(math.Ceil(float64(guestLoad) / float64(covers)))
	if head < p.cfg.Min {
		head = p.cfg.Min
	}
	return head
}

// proportionalPolicy staffs roles that scale linearly with guest load,
// such as kitchen and runners.
type proportionalPolicy struct {
	name string
	cfg  conf.RoleSettings
}

func (p *proportionalPolicy) Name() string { return p.name }

func (p *proportionalPolicy) RequiredHeadcount(guestLoad int, day DayContext) int {
	head := p.cfg.Min
	if p.cfg.GuestsPerHead > 0 {
		scaled := int(math.Ceil(float64(guestLoad) / float64(p.cfg.GuestsPerHead)))
		if scaled > head {
			head = scaled
		}
	}
	return head
}

// Engine applies every configured role policy to a day's guest load and
// shapes the result into per-bucket requirement curves.
type Engine struct {
	buckets  []Bucket
	policies []RolePolicy
}

// NewEngine builds the rule engine from the staffing configuration.
func NewEngine(cfg *conf.StaffingSettings) (*Engine, error) {
	buckets := make([]Bucket, 0, len(cfg.Buckets))
	for i := range cfg.Buckets {
		b := &cfg.Buckets[i]
		start, err := parseClock(b.Start)
		if err != nil {
			return nil, errors.New(err).
				Component("staffing").
				Category(errors.CategoryConfiguration).
				Context("bucket", b.Name).
				Build()
		}
		end, err := parseClock(b.End)
		if err != nil {
			return nil, errors.New(err).
				Component("staffing").
				Category(errors.CategoryConfiguration).
				Context("bucket", b.Name).
				Build()
		}
		if end <= start {
			return nil, errors.Newf("bucket %q ends before it starts", b.Name).
				Component("staffing").
				Category(errors.CategoryConfiguration).
				Build()
		}
		buckets = append(buckets, Bucket{
			Name:      b.Name,
			Start:     b.Start,
			End:       b.End,
			StartHour: start,
			EndHour:   end,
			LoadShare: b.LoadShare,
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].StartHour < buckets[j].StartHour })

	roleNames := make([]string, 0, len(cfg.Roles))
	for name := range cfg.Roles {
		roleNames = append(roleNames, name)
	}
	sort.Strings(roleNames)

	policies := make([]RolePolicy, 0, len(roleNames))
	for _, name := range roleNames {
		policies = append(policies, newPolicy(name, cfg.Roles[name]))
	}

	return &Engine{buckets: buckets, policies: policies}, nil
}

// Buckets returns the ordered operating-day buckets.
func (e *Engine) Buckets() []Bucket {
	return e.buckets
}

// maxLoadShare finds the busiest bucket's share, used to normalize the
// intensity curve.
func (e *Engine) maxLoadShare() float64 {
	maxShare := 0.0
	for i := range e.buckets {
		if e.buckets[i].LoadShare > maxShare {
			maxShare = e.buckets[i].LoadShare
		}
	}
	return maxShare
}

// Requirements computes every role's per-bucket headcount curve for a
// day. The day-level headcount from the role policy applies in full at
// the busiest bucket; quieter buckets scale down with their load share
// but never below the role minimum.
func (e *Engine) Requirements(guestLoad int, day DayContext, roles map[string]conf.RoleSettings) []RoleRequirement {
	maxShare := e.maxLoadShare()

	requirements := make([]RoleRequirement, 0, len(e.policies))
	for _, policy := range e.policies {
		dayHead := policy.RequiredHeadcount(guestLoad, day)
		roleMin := roles[policy.Name()].Min

		curve := RoleRequirement{Role: policy.Name()}
		for i := range e.buckets {
			b := e.buckets[i]
			head := dayHead
			if maxShare > 0 {
				head = int(math.Ceil(float64(dayHead) * b.LoadShare / maxShare))
			}
			if head < roleMin {
				head = roleMin
			}
			curve.Buckets = append(curve.Buckets, BucketRequirement{Bucket: b, Headcount: head})
		}
		requirements = append(requirements, curve)
	}
	return requirements
}
