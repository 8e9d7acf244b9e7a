package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"metacognition/internal/model"
)

const (
	week = 7 * 24 * time.Hour

	minGoalUses          = 2  // strategy x goal cells below this are too thin to rank
	minStrategyGoalDiff  = 15 // accuracy points between best and worst goal
	maxStrategyGoalItems = 3
	minPlanCount         = 2
	maxReflectionItems   = 5
	minTimingSamples     = 5
	minMuddySamples      = 3
	minThemeCount        = 2
	maxThemes            = 3
	maxThemeExamples     = 2
)

// muddyThemes maps keyword families to theme labels. Matching is plain
// substring containment, and a text may land in several themes.
var muddyThemes = []struct {
	keywords []string
	theme    string
}{
	{[]string{"abstract", "theoretical", "concept"}, "Abstract concepts"},
	{[]string{"formula", "equation", "math", "calculation"}, "Mathematical formulas"},
	{[]string{"terminology", "term", "definition", "vocabulary"}, "Terminology"},
	{[]string{"connection", "relationship", "how", "why"}, "Connections and relationships"},
	{[]string{"application", "apply", "use", "practical"}, "Practical applications"},
	{[]string{"detail", "specific", "example"}, "Specific details"},
}

// roundHalfUp rounds to the nearest integer with halves going up (2.5 -> 3, -2.5 -> -2)
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func roundTenths(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// percent returns round(part/whole*100), or nil when whole is zero
func percent(part, whole int) *int {
	if whole <= 0 {
		return nil
	}
	p := roundHalfUp(float64(part) / float64(whole) * 100)
	return &p
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func reduceStrategies(c *collected) []model.StrategyStat {
	out := []model.StrategyStat{}
	c.strategies.each(func(name string, s *strategyAcc) {
		out = append(out, model.StrategyStat{
			Strategy:          name,
			AverageAccuracy:   roundHalfUp(mean(s.sumAccuracy, s.count)),
			Uses:              s.count,
			HelpfulPercentage: percent(s.helpful, s.helpful+s.notHelpful),
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageAccuracy > out[j].AverageAccuracy
	})
	return out
}

func reduceWeeklyTrends(points []trendPoint) []model.WeeklyTrend {
	out := []model.WeeklyTrend{}
	if len(points) == 0 {
		return out
	}

	sorted := make([]trendPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].date.Before(sorted[j].date)
	})

	type bucket struct {
		accuracy, confidence, calibrationError float64
		n                                      int
	}
	first := sorted[0].date
	buckets := make(map[int]*bucket)
	var weeks []int
	for _, p := range sorted {
		idx := int(p.date.Sub(first) / week)
		b, ok := buckets[idx]
		if !ok {
			b = &bucket{}
			buckets[idx] = b
			weeks = append(weeks, idx)
		}
		b.accuracy += p.accuracy
		b.confidence += p.confidence
		b.calibrationError += p.calibrationError
		b.n++
	}

	sort.Ints(weeks)
	for _, idx := range weeks {
		b := buckets[idx]
		out = append(out, model.WeeklyTrend{
			Week:             idx + 1,
			Accuracy:         roundHalfUp(mean(b.accuracy, b.n)),
			Confidence:       roundHalfUp(mean(b.confidence, b.n)),
			CalibrationError: roundHalfUp(mean(b.calibrationError, b.n)),
		})
	}
	return out
}

// reduceGoals drops goals nobody rated as achieved or not achieved
func reduceGoals(c *collected) []model.GoalStat {
	out := []model.GoalStat{}
	c.goals.each(func(name string, g *goalAcc) {
		rate := percent(g.achieved, g.achieved+g.notAchieved)
		if rate == nil {
			return
		}
		out = append(out, model.GoalStat{
			Goal:            name,
			AchievementRate: *rate,
			AverageAccuracy: roundHalfUp(mean(g.sumAccuracy, g.count)),
			Attempts:        g.count,
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AchievementRate > out[j].AchievementRate
	})
	return out
}

func reduceStrategyGoals(c *collected) []model.StrategyGoalInsight {
	out := []model.StrategyGoalInsight{}
	c.matrix.each(func(strategy string, goals *ordered[cellAcc]) {
		perfs := []model.GoalPerformance{}
		goals.each(func(goal string, cell *cellAcc) {
			if cell.count < minGoalUses {
				return
			}
			perfs = append(perfs, model.GoalPerformance{
				Goal:     goal,
				Accuracy: roundHalfUp(mean(cell.sumAccuracy, cell.count)),
				Uses:     cell.count,
			})
		})
		if len(perfs) < 2 {
			return
		}
		sort.SliceStable(perfs, func(i, j int) bool {
			return perfs[i].Accuracy > perfs[j].Accuracy
		})

		best, worst := perfs[0], perfs[len(perfs)-1]
		diff := best.Accuracy - worst.Accuracy
		if diff < minStrategyGoalDiff {
			return
		}
		out = append(out, model.StrategyGoalInsight{
			Strategy:         strategy,
			BestGoal:         best.Goal,
			BestAccuracy:     best.Accuracy,
			WorstGoal:        worst.Goal,
			WorstAccuracy:    worst.Accuracy,
			Difference:       diff,
			GoalPerformances: perfs,
		})
	})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Difference > out[j].Difference
	})
	if len(out) > maxStrategyGoalItems {
		out = out[:maxStrategyGoalItems]
	}
	return out
}

func reduceReflectionPatterns(c *collected) []model.ReflectionPattern {
	out := []model.ReflectionPattern{}
	c.plans.each(func(_ string, p *planAcc) {
		if p.planCount < minPlanCount {
			return
		}
		rate := *percent(p.executedCount, p.planCount)
		out = append(out, model.ReflectionPattern{
			Plan:          p.example,
			Count:         p.planCount,
			ExecutedCount: p.executedCount,
			ExecutionRate: rate,
			FollowThrough: followThroughBand(rate),
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > maxReflectionItems {
		out = out[:maxReflectionItems]
	}
	return out
}

func followThroughBand(rate int) string {
	switch {
	case rate >= 70:
		return model.FollowThroughOnTrack
	case rate >= 40:
		return model.FollowThroughPartial
	default:
		return model.FollowThroughNeedsAttention
	}
}

// reduceEfficiency compares the fastest and slowest quartiles by time spent.
// Samples between the two quartiles are not used.
func reduceEfficiency(samples []timeSample) *model.EfficiencyInsight {
	n := len(samples)
	if n < minTimingSamples {
		return nil
	}

	sorted := make([]timeSample, n)
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].timeSpent < sorted[j].timeSpent
	})

	q := n / 4
	fast := sorted[:q]
	slow := sorted[n-q:]

	fastTime, fastAcc := quartileAverages(fast)
	slowTime, slowAcc := quartileAverages(slow)
	if fastTime <= 0 {
		return nil
	}

	gain := slowAcc - fastAcc
	multiplier := float64(slowTime) / float64(fastTime)

	return &model.EfficiencyInsight{
		FastAvgTime:     fastTime,
		FastAvgAccuracy: fastAcc,
		SlowAvgTime:     slowTime,
		SlowAvgAccuracy: slowAcc,
		AccuracyGain:    gain,
		TimeMultiplier:  roundTenths(multiplier),
		Efficiency:      float64(gain) / multiplier,
	}
}

func quartileAverages(samples []timeSample) (avgTime, avgAccuracy int) {
	var t, a float64
	for _, s := range samples {
		t += s.timeSpent
		a += s.accuracy
	}
	return roundHalfUp(mean(t, len(samples))), roundHalfUp(mean(a, len(samples)))
}

func reduceMuddyPoints(samples []muddySample) *model.MuddyPointInsights {
	if len(samples) < minMuddySamples {
		return nil
	}

	type themeAcc struct {
		count       int
		sumAccuracy float64
		examples    []string
	}
	themes := newOrdered[themeAcc]()
	for _, mp := range samples {
		lower := strings.ToLower(mp.text)
		for _, t := range muddyThemes {
			if !containsAny(lower, t.keywords) {
				continue
			}
			acc := themes.get(t.theme)
			acc.count++
			acc.sumAccuracy += mp.accuracy
			if len(acc.examples) < maxThemeExamples {
				acc.examples = append(acc.examples, mp.text)
			}
		}
	}

	top := []model.MuddyPointTheme{}
	themes.each(func(name string, t *themeAcc) {
		if t.count < minThemeCount {
			return
		}
		top = append(top, model.MuddyPointTheme{
			Theme:       name,
			Count:       t.count,
			AvgAccuracy: roundHalfUp(mean(t.sumAccuracy, t.count)),
			Examples:    t.examples,
		})
	})
	if len(top) == 0 {
		return nil
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > maxThemes {
		top = top[:maxThemes]
	}

	return &model.MuddyPointInsights{
		TotalMuddyPoints: len(samples),
		Themes:           top,
	}
}
