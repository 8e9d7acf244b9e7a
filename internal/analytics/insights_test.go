package analytics

import (
	"strings"
	"testing"

	"metacognition/internal/model"
)

func kinds(in []model.Insight) []model.InsightKind {
	out := make([]model.InsightKind, 0, len(in))
	for _, i := range in {
		out = append(out, i.Kind)
	}
	return out
}

func TestCalibrationInsight(t *testing.T) {
	cases := []struct {
		confidence, accuracy int
		want                 model.InsightKind
		contains             string
	}{
		{75, 70, model.InsightCalibrationGood, "Great calibration"},
		{80, 70, model.InsightCalibrationOverconfident, "10% overconfident"},
		{50, 72, model.InsightCalibrationUnderconfident, "22% underconfident"},
	}
	for _, tc := range cases {
		got := calibrationInsight(tc.confidence, tc.accuracy)
		if got.Kind != tc.want || !strings.Contains(got.Message, tc.contains) {
			t.Fatalf("calibrationInsight(%d, %d) = %+v", tc.confidence, tc.accuracy, got)
		}
	}
}

func TestWeeklyInsights(t *testing.T) {
	if got := weeklyInsights([]model.WeeklyTrend{{Week: 1, Accuracy: 40}}); got != nil {
		t.Fatalf("single week is no trend, got %+v", got)
	}

	both := weeklyInsights([]model.WeeklyTrend{
		{Week: 1, Accuracy: 50, CalibrationError: 30},
		{Week: 2, Accuracy: 40, CalibrationError: 30},
		{Week: 3, Accuracy: 70, CalibrationError: 10},
	})
	if k := kinds(both); len(k) != 2 || k[0] != model.InsightAccuracyGrowth || k[1] != model.InsightCalibrationGrowth {
		t.Fatalf("expected both growth insights, got %v", k)
	}
	if !strings.Contains(both[0].Message, "improved by 20% from week 1 to week 3") {
		t.Fatalf("unexpected message %q", both[0].Message)
	}

	flat := weeklyInsights([]model.WeeklyTrend{
		{Week: 1, Accuracy: 70, CalibrationError: 12},
		{Week: 2, Accuracy: 75, CalibrationError: 8},
	})
	if len(flat) != 1 || flat[0].Kind != model.InsightKeepLearning {
		t.Fatalf("expected keep learning, got %+v", flat)
	}
	if flat[0].Message != "Keep learning! Your accuracy is at 75% with 8% calibration error." {
		t.Fatalf("unexpected message %q", flat[0].Message)
	}
}

func TestGoalInsights(t *testing.T) {
	if got := goalInsights([]model.GoalStat{{Goal: "gist", AchievementRate: 100}}); got != nil {
		t.Fatalf("expected nothing for a single goal, got %+v", got)
	}

	gap := goalInsights([]model.GoalStat{
		{Goal: "gist", AchievementRate: 90},
		{Goal: "explain", AchievementRate: 80},
		{Goal: "apply", AchievementRate: 40},
	})
	if len(gap) != 1 || gap[0].Kind != model.InsightGoalGap || gap[0].Subject != "apply" {
		t.Fatalf("expected gap on apply, got %+v", gap)
	}

	even := goalInsights([]model.GoalStat{
		{Goal: "gist", AchievementRate: 80},
		{Goal: "apply", AchievementRate: 60},
	})
	if len(even) != 1 || even[0].Kind != model.InsightGoalConsistent {
		t.Fatalf("a 20 point gap is still consistent, got %+v", even)
	}
}

func TestStrategyInsights(t *testing.T) {
	got := strategyInsights(
		[]model.StrategyStat{{Strategy: "visualize", AverageAccuracy: 88}, {Strategy: "reread", AverageAccuracy: 40}},
		[]model.StrategyGoalInsight{{Strategy: "visualize", BestGoal: "gist", BestAccuracy: 90, WorstGoal: "apply", WorstAccuracy: 60}},
	)
	if k := kinds(got); len(k) != 2 || k[0] != model.InsightStrategyRecommendation || k[1] != model.InsightStrategyGoalFit {
		t.Fatalf("unexpected kinds %v", k)
	}
	if got[0].Message != `Your most effective strategy is "visualize" with 88% accuracy. Try using it more often!` {
		t.Fatalf("unexpected message %q", got[0].Message)
	}
	if len(strategyInsights(nil, nil)) != 0 {
		t.Fatalf("expected no insights without strategies")
	}
}

func TestReflectionInsights_LowFollowThrough(t *testing.T) {
	got := reflectionInsights([]model.ReflectionPattern{
		{Plan: "try something new", Count: 4, ExecutedCount: 1, ExecutionRate: 25},
		{Plan: "keep going", Count: 2, ExecutedCount: 0, ExecutionRate: 0},
		{Plan: "switch", Count: 5, ExecutedCount: 4, ExecutionRate: 80},
	})
	if len(got) != 1 || got[0].Subject != "try something new" {
		t.Fatalf("expected one follow-through insight, got %+v", got)
	}
	if !strings.Contains(got[0].Message, "planned this 4 times but only followed through 1 times") {
		t.Fatalf("unexpected message %q", got[0].Message)
	}
}

func TestEfficiencyInsight(t *testing.T) {
	cases := []struct {
		gain int
		want model.InsightKind
	}{
		{4, model.InsightEfficiencyDiminishing},
		{5, model.InsightEfficiencyTradeoff},
		{14, model.InsightEfficiencyTradeoff},
		{15, model.InsightEfficiencyWorthIt},
	}
	for _, tc := range cases {
		got := efficiencyInsight(&model.EfficiencyInsight{AccuracyGain: tc.gain, TimeMultiplier: 2.5})
		if got.Kind != tc.want {
			t.Fatalf("gain %d: got %s want %s", tc.gain, got.Kind, tc.want)
		}
		if !strings.Contains(got.Message, "2.5x") {
			t.Fatalf("expected multiplier in message, got %q", got.Message)
		}
	}
}

func TestMuddyInsights_OnlyLowAccuracyThemes(t *testing.T) {
	got := muddyInsights([]model.MuddyPointTheme{
		{Theme: "Terminology", AvgAccuracy: 69},
		{Theme: "Specific details", AvgAccuracy: 70},
	})
	if len(got) != 1 || got[0].Subject != "Terminology" {
		t.Fatalf("unexpected tips %+v", got)
	}
}

func TestSynthesizeInsights_OrderFollowsRules(t *testing.T) {
	r := &model.DashboardReport{
		AverageAccuracy:   60,
		AverageConfidence: 90,
		WeeklyTrends:      []model.WeeklyTrend{{Week: 1, Accuracy: 50}, {Week: 2, Accuracy: 70}},
		StrategyStats:     []model.StrategyStat{{Strategy: "visualize", AverageAccuracy: 70}},
		EfficiencyInsight: &model.EfficiencyInsight{AccuracyGain: 20, TimeMultiplier: 3},
	}
	want := []model.InsightKind{
		model.InsightCalibrationOverconfident,
		model.InsightAccuracyGrowth,
		model.InsightStrategyRecommendation,
		model.InsightEfficiencyWorthIt,
	}
	got := kinds(synthesizeInsights(r))
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
