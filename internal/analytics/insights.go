package analytics

import (
	"fmt"
	"strconv"

	"metacognition/internal/model"
)

const (
	calibrationTolerance  = 10
	weeklyChangeThreshold = 5
	goalGapThreshold      = 20
	lowFollowThroughRate  = 50
	minFollowThroughCount = 3
	diminishingGain       = 5
	worthwhileGain        = 15
	muddyTipAccuracy      = 70
)

// synthesizeInsights applies independent threshold rules over an assembled report
func synthesizeInsights(r *model.DashboardReport) []model.Insight {
	out := []model.Insight{}
	out = append(out, calibrationInsight(r.AverageConfidence, r.AverageAccuracy))
	out = append(out, weeklyInsights(r.WeeklyTrends)...)
	out = append(out, goalInsights(r.GoalStats)...)
	out = append(out, strategyInsights(r.StrategyStats, r.StrategyGoalInsights)...)
	out = append(out, reflectionInsights(r.ReflectionPatterns)...)
	if r.EfficiencyInsight != nil {
		out = append(out, efficiencyInsight(r.EfficiencyInsight))
	}
	if r.MuddyPointInsights != nil {
		out = append(out, muddyInsights(r.MuddyPointInsights.Themes)...)
	}
	return out
}

func calibrationInsight(confidence, accuracy int) model.Insight {
	gap := confidence - accuracy
	if gap < 0 {
		gap = -gap
	}
	switch {
	case gap < calibrationTolerance:
		return model.Insight{
			Kind:    model.InsightCalibrationGood,
			Message: "Great calibration! You're accurately assessing your understanding.",
		}
	case confidence > accuracy:
		return model.Insight{
			Kind:    model.InsightCalibrationOverconfident,
			Message: fmt.Sprintf("You tend to be %d%% overconfident. Continue practicing to improve your self-assessment.", gap),
		}
	default:
		return model.Insight{
			Kind:    model.InsightCalibrationUnderconfident,
			Message: fmt.Sprintf("You tend to be %d%% underconfident. Trust yourself more - you know more than you think!", gap),
		}
	}
}

// weeklyInsights compares the first and last week; fewer than two weeks is no trend
func weeklyInsights(weeks []model.WeeklyTrend) []model.Insight {
	if len(weeks) < 2 {
		return nil
	}
	first, last := weeks[0], weeks[len(weeks)-1]
	accuracyChange := last.Accuracy - first.Accuracy
	calibrationChange := first.CalibrationError - last.CalibrationError

	var out []model.Insight
	if accuracyChange > weeklyChangeThreshold {
		out = append(out, model.Insight{
			Kind: model.InsightAccuracyGrowth,
			Message: fmt.Sprintf("Great progress! Your accuracy improved by %d%% from week %d to week %d.",
				accuracyChange, first.Week, last.Week),
		})
	}
	if calibrationChange > weeklyChangeThreshold {
		out = append(out, model.Insight{
			Kind:    model.InsightCalibrationGrowth,
			Message: fmt.Sprintf("Your calibration improved by %d%% - you're getting better at self-assessment!", calibrationChange),
		})
	}
	if len(out) == 0 {
		out = append(out, model.Insight{
			Kind: model.InsightKeepLearning,
			Message: fmt.Sprintf("Keep learning! Your accuracy is at %d%% with %d%% calibration error.",
				last.Accuracy, last.CalibrationError),
		})
	}
	return out
}

func goalInsights(goals []model.GoalStat) []model.Insight {
	if len(goals) < 2 {
		return nil
	}
	best, worst := goals[0], goals[len(goals)-1]
	if best.AchievementRate-worst.AchievementRate > goalGapThreshold {
		return []model.Insight{{
			Kind:    model.InsightGoalGap,
			Subject: worst.Goal,
			Message: fmt.Sprintf("You achieve %q %d%% of the time but only %d%% for %q. Consider spending more time planning when your goal is %q.",
				best.Goal, best.AchievementRate, worst.AchievementRate, worst.Goal, worst.Goal),
		}}
	}
	return []model.Insight{{
		Kind:    model.InsightGoalConsistent,
		Message: "Your goal achievement is consistent across different learning goals. Keep up the balanced approach!",
	}}
}

func strategyInsights(stats []model.StrategyStat, byGoal []model.StrategyGoalInsight) []model.Insight {
	var out []model.Insight
	if len(stats) > 0 {
		top := stats[0]
		out = append(out, model.Insight{
			Kind:    model.InsightStrategyRecommendation,
			Subject: top.Strategy,
			Message: fmt.Sprintf("Your most effective strategy is %q with %d%% accuracy. Try using it more often!",
				top.Strategy, top.AverageAccuracy),
		})
	}
	for _, sg := range byGoal {
		out = append(out, model.Insight{
			Kind:    model.InsightStrategyGoalFit,
			Subject: sg.Strategy,
			Message: fmt.Sprintf("%s works best for %q (%d%% accuracy) but less effective for %q (%d%% accuracy).",
				sg.Strategy, sg.BestGoal, sg.BestAccuracy, sg.WorstGoal, sg.WorstAccuracy),
		})
	}
	return out
}

func reflectionInsights(patterns []model.ReflectionPattern) []model.Insight {
	var out []model.Insight
	for _, p := range patterns {
		if p.ExecutionRate >= lowFollowThroughRate || p.Count < minFollowThroughCount {
			continue
		}
		out = append(out, model.Insight{
			Kind:    model.InsightPlanFollowThrough,
			Subject: p.Plan,
			Message: fmt.Sprintf("You've planned this %d times but only followed through %d times. Consider why this plan is hard to execute.",
				p.Count, p.ExecutedCount),
		})
	}
	return out
}

func efficiencyInsight(e *model.EfficiencyInsight) model.Insight {
	multiplier := strconv.FormatFloat(e.TimeMultiplier, 'f', -1, 64)
	switch {
	case e.AccuracyGain < diminishingGain:
		return model.Insight{
			Kind: model.InsightEfficiencyDiminishing,
			Message: fmt.Sprintf("You spend %sx longer on some chunks but only gain %d%% accuracy. Consider using more efficient strategies or moving on when you hit diminishing returns.",
				multiplier, e.AccuracyGain),
		}
	case e.AccuracyGain >= worthwhileGain:
		return model.Insight{
			Kind: model.InsightEfficiencyWorthIt,
			Message: fmt.Sprintf("Taking more time pays off! You gain %d%% accuracy when spending %sx longer. Keep investing time where it matters.",
				e.AccuracyGain, multiplier),
		}
	default:
		return model.Insight{
			Kind: model.InsightEfficiencyTradeoff,
			Message: fmt.Sprintf("Spending %sx longer improves accuracy by %d%%. This is a reasonable trade-off for important topics.",
				multiplier, e.AccuracyGain),
		}
	}
}

func muddyInsights(themes []model.MuddyPointTheme) []model.Insight {
	var out []model.Insight
	for _, t := range themes {
		if t.AvgAccuracy >= muddyTipAccuracy {
			continue
		}
		out = append(out, model.Insight{
			Kind:    model.InsightMuddyThemeTip,
			Subject: t.Theme,
			Message: `Try using "work an example" or "connect to what I know" strategies for this type of content.`,
		})
	}
	return out
}
