package analytics

import (
	"math"
	"strings"
	"time"

	"metacognition/internal/model"
)

// unknownLabel groups responses that carry no strategy or goal
const unknownLabel = "Unknown"

// Plan keyword families. A plan matching the switch family is executed when
// the next response changes strategy; the keep family when it does not.
var (
	switchPlanKeywords = []string{"different", "try", "switch"}
	keepPlanKeywords   = []string{"same", "keep", "continue"}
)

type strategyAcc struct {
	sumAccuracy float64
	count       int
	helpful     int
	notHelpful  int
}

type goalAcc struct {
	sumAccuracy float64
	count       int
	achieved    int
	notAchieved int
}

type cellAcc struct {
	sumAccuracy float64
	count       int
}

type planAcc struct {
	planCount     int
	executedCount int
	example       string
}

type trendPoint struct {
	date             time.Time
	accuracy         float64
	confidence       float64
	calibrationError float64
}

type timeSample struct {
	timeSpent float64
	accuracy  float64
}

type muddySample struct {
	text     string
	accuracy float64
}

// ordered is a string-keyed accumulator map that remembers first-seen key order,
// so reducers can break sort ties the same way on every run.
type ordered[V any] struct {
	keys  []string
	items map[string]*V
}

func newOrdered[V any]() *ordered[V] {
	return &ordered[V]{items: make(map[string]*V)}
}

func (o *ordered[V]) getOrInit(key string, init func() *V) *V {
	if v, ok := o.items[key]; ok {
		return v
	}
	v := init()
	o.items[key] = v
	o.keys = append(o.keys, key)
	return v
}

func (o *ordered[V]) get(key string) *V {
	return o.getOrInit(key, func() *V { return new(V) })
}

func (o *ordered[V]) each(fn func(key string, v *V)) {
	for _, k := range o.keys {
		fn(k, o.items[k])
	}
}

// collected holds every per-response bucket for one aggregation call
type collected struct {
	strategies *ordered[strategyAcc]
	goals      *ordered[goalAcc]
	matrix     *ordered[ordered[cellAcc]]
	plans      *ordered[planAcc]
	trend      []trendPoint
	timing     []timeSample
	muddy      []muddySample
}

// classify makes a single forward pass over responses in fetch order.
// The plan-execution check looks at index i+1 of this same slice.
func classify(responses []*model.Response) *collected {
	rs := make([]*model.Response, 0, len(responses))
	for _, r := range responses {
		if r != nil {
			rs = append(rs, r)
		}
	}

	c := &collected{
		strategies: newOrdered[strategyAcc](),
		goals:      newOrdered[goalAcc](),
		matrix:     newOrdered[ordered[cellAcc]](),
		plans:      newOrdered[planAcc](),
	}

	for i, r := range rs {
		strategy := labelOr(r.Strategy)
		goal := labelOr(r.Goal)

		s := c.strategies.get(strategy)
		s.sumAccuracy += r.Accuracy
		s.count++
		if r.StrategyHelpful != nil {
			if *r.StrategyHelpful {
				s.helpful++
			} else {
				s.notHelpful++
			}
		}

		if !r.CreatedAt.IsZero() {
			c.trend = append(c.trend, trendPoint{
				date:             r.CreatedAt,
				accuracy:         r.Accuracy,
				confidence:       r.Confidence,
				calibrationError: math.Abs(r.Confidence - r.Accuracy),
			})
		}

		g := c.goals.get(goal)
		g.count++
		g.sumAccuracy += r.Accuracy
		switch r.GoalAchieved {
		case model.GoalYes:
			g.achieved++
		case model.GoalNo:
			g.notAchieved++
		}

		cells := c.matrix.getOrInit(strategy, newOrdered[cellAcc])
		cell := cells.get(goal)
		cell.sumAccuracy += r.Accuracy
		cell.count++

		if plan := strings.TrimSpace(r.NextTimeAdjustment); plan != "" {
			key := strings.ToLower(plan)
			p := c.plans.get(key)
			p.planCount++
			if p.planCount == 1 {
				p.example = plan
			}
			if i+1 < len(rs) && planExecuted(key, r.Strategy, rs[i+1].Strategy) {
				p.executedCount++
			}
		}

		if r.TimeSpent != 0 {
			c.timing = append(c.timing, timeSample{
				timeSpent: r.TimeSpent,
				accuracy:  r.Accuracy,
			})
		}

		if text := strings.TrimSpace(r.MuddyPoint); text != "" {
			c.muddy = append(c.muddy, muddySample{
				text:     text,
				accuracy: r.Accuracy,
			})
		}
	}

	return c
}

// planExecuted reports whether the next response followed a (lower-cased) plan.
// Plans outside both keyword families never count as executed.
func planExecuted(plan, current, next string) bool {
	switch {
	case containsAny(plan, switchPlanKeywords):
		return next != current
	case containsAny(plan, keepPlanKeywords):
		return next == current
	}
	return false
}

func labelOr(s string) string {
	if s == "" {
		return unknownLabel
	}
	return s
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
