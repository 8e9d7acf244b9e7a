// Package analytics turns a learner's session and response history into the
// dashboard report: strategy and goal performance, weekly trends, plan
// follow-through, time efficiency, muddy-point themes and the insight
// messages derived from them. Everything here is pure and deterministic for
// a given input order.
package analytics

import "metacognition/internal/model"

const recentSessionLimit = 5

// CompletedSessions filters sessions down to the completed ones, keeping order
func CompletedSessions(sessions []*model.Session) []*model.Session {
	out := make([]*model.Session, 0, len(sessions))
	for _, s := range sessions {
		if s != nil && s.IsCompleted() {
			out = append(out, s)
		}
	}
	return out
}

// BuildReport assembles the dashboard report.
//
// sessions is every session of the user in fetch order (newest first).
// responses is the concatenation of each completed session's responses,
// session by session in that same order, each session's responses oldest
// first. The order matters for plan follow-through.
func BuildReport(sessions []*model.Session, responses []*model.Response) *model.DashboardReport {
	completed := CompletedSessions(sessions)
	report := EmptyReport(countSessions(sessions))
	if len(completed) == 0 {
		return report
	}

	report.HasData = true
	report.CompletedSessions = len(completed)
	applySessionTotals(report, completed)
	report.RecentSessions = recentSessions(sessions)

	c := classify(responses)
	report.StrategyStats = reduceStrategies(c)
	report.WeeklyTrends = reduceWeeklyTrends(c.trend)
	report.GoalStats = reduceGoals(c)
	report.StrategyGoalInsights = reduceStrategyGoals(c)
	report.ReflectionPatterns = reduceReflectionPatterns(c)
	report.EfficiencyInsight = reduceEfficiency(c.timing)
	report.MuddyPointInsights = reduceMuddyPoints(c.muddy)

	report.Insights = synthesizeInsights(report)
	return report
}

// EmptyReport is the no-data report: counts only, every list empty
func EmptyReport(totalSessions int) *model.DashboardReport {
	return &model.DashboardReport{
		TotalSessions:        totalSessions,
		StrategyStats:        []model.StrategyStat{},
		WeeklyTrends:         []model.WeeklyTrend{},
		GoalStats:            []model.GoalStat{},
		StrategyGoalInsights: []model.StrategyGoalInsight{},
		ReflectionPatterns:   []model.ReflectionPattern{},
		Insights:             []model.Insight{},
		RecentSessions:       []model.SessionPreview{},
	}
}

// applySessionTotals weights each session's averages by its completed chunks
func applySessionTotals(report *model.DashboardReport, completed []*model.Session) {
	var (
		chunks                    int
		accuracy, confidence, sec float64
	)
	for _, s := range completed {
		st := s.SessionStats
		chunks += st.ChunksCompleted
		accuracy += st.AverageAccuracy * float64(st.ChunksCompleted)
		confidence += st.AverageConfidence * float64(st.ChunksCompleted)
		sec += st.TotalTimeSeconds
	}

	report.TotalChunks = chunks
	if chunks > 0 {
		report.AverageAccuracy = roundHalfUp(accuracy / float64(chunks))
		report.AverageConfidence = roundHalfUp(confidence / float64(chunks))
	}
	report.TotalTimeMinutes = roundHalfUp(sec / 60)
}

func recentSessions(sessions []*model.Session) []model.SessionPreview {
	out := []model.SessionPreview{}
	for _, s := range sessions {
		if s == nil {
			continue
		}
		if len(out) == recentSessionLimit {
			break
		}
		out = append(out, s.Preview())
	}
	return out
}

func countSessions(sessions []*model.Session) int {
	n := 0
	for _, s := range sessions {
		if s != nil {
			n++
		}
	}
	return n
}
