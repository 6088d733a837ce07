package attendance

import (
	"github.com/logia/portal/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// Rule decides which marks count as attended
type Rule interface {
	strategy.Strategy
	Counts(status Status) bool
}

type statusRule struct {
	strategy.BaseStrategy
	attended map[Status]bool
}

func (r statusRule) Counts(status Status) bool {
	return r.attended[status]
}

// PersonalRule is used on a member's own dashboard. Commission counts.
var PersonalRule Rule = statusRule{
	BaseStrategy: strategy.NewBaseStrategy("personal", strategy.StrategyTypeAttendance,
		"present, late and on-commission marks count as attended"),
	attended: map[Status]bool{StatusPresent: true, StatusLate: true, StatusOnCommission: true},
}

// OfficialRule is used for the lodge-wide report
var OfficialRule Rule = statusRule{
	BaseStrategy: strategy.NewBaseStrategy("official", strategy.StrategyTypeAttendance,
		"present and late marks count as attended"),
	attended: map[Status]bool{StatusPresent: true, StatusLate: true},
}

// Rate summarises a set of marks under a rule
type Rate struct {
	Attended int
	Total    int
	Percent  decimal.Decimal
}

// ComputeRate counts attended marks. An empty set yields 0%.
func ComputeRate(records []Record, rule Rule) Rate {
	r := Rate{Total: len(records), Percent: decimal.Zero}
	for _, rec := range records {
		if rule.Counts(rec.Status) {
			r.Attended++
		}
	}
	if r.Total > 0 {
		r.Percent = decimal.NewFromInt(int64(r.Attended)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(r.Total))).
			Round(1)
	}
	return r
}
