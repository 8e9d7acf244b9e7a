package model

// DashboardReport is the derived learning analytics for one user.
// It is recomputed on every dashboard load and never stored.
type DashboardReport struct {
	HasData bool `json:"hasData"`

	TotalSessions     int `json:"totalSessions"`
	CompletedSessions int `json:"completedSessions"`
	TotalChunks       int `json:"totalChunks"`
	AverageAccuracy   int `json:"averageAccuracy"`
	AverageConfidence int `json:"averageConfidence"`
	TotalTimeMinutes  int `json:"totalTimeMinutes"`

	StrategyStats        []StrategyStat        `json:"strategyStats"`
	WeeklyTrends         []WeeklyTrend         `json:"weeklyTrends"`
	GoalStats            []GoalStat            `json:"goalStats"`
	StrategyGoalInsights []StrategyGoalInsight `json:"strategyGoalInsights"`
	ReflectionPatterns   []ReflectionPattern   `json:"reflectionPatterns"`
	EfficiencyInsight    *EfficiencyInsight    `json:"efficiencyInsight"`
	MuddyPointInsights   *MuddyPointInsights   `json:"muddyPointInsights"`
	Insights             []Insight             `json:"insights"`
	RecentSessions       []SessionPreview      `json:"recentSessions"`
}

// StrategyStat is per-strategy performance. HelpfulPercentage is nil when no response was rated.
type StrategyStat struct {
	Strategy          string `json:"strategy"`
	AverageAccuracy   int    `json:"averageAccuracy"`
	Uses              int    `json:"uses"`
	HelpfulPercentage *int   `json:"helpfulPercentage"`
}

// WeeklyTrend is one 7-day bucket counted from the first response (week is 1-indexed)
type WeeklyTrend struct {
	Week             int `json:"week"`
	Accuracy         int `json:"accuracy"`
	Confidence       int `json:"confidence"`
	CalibrationError int `json:"calibrationError"`
}

type GoalStat struct {
	Goal            string `json:"goal"`
	AchievementRate int    `json:"achievementRate"`
	AverageAccuracy int    `json:"averageAccuracy"`
	Attempts        int    `json:"attempts"`
}

type GoalPerformance struct {
	Goal     string `json:"goal"`
	Accuracy int    `json:"accuracy"`
	Uses     int    `json:"uses"`
}

// StrategyGoalInsight flags a strategy whose accuracy differs sharply by goal
type StrategyGoalInsight struct {
	Strategy         string            `json:"strategy"`
	BestGoal         string            `json:"bestGoal"`
	BestAccuracy     int               `json:"bestAccuracy"`
	WorstGoal        string            `json:"worstGoal"`
	WorstAccuracy    int               `json:"worstAccuracy"`
	Difference       int               `json:"difference"`
	GoalPerformances []GoalPerformance `json:"goalPerformances"`
}

// Follow-through bands for reflection patterns
const (
	FollowThroughOnTrack        = "on_track"
	FollowThroughPartial        = "partial"
	FollowThroughNeedsAttention = "needs_attention"
)

// ReflectionPattern tracks a repeated next-time plan and how often it was carried out
type ReflectionPattern struct {
	Plan          string `json:"plan"`
	Count         int    `json:"count"`
	ExecutedCount int    `json:"executedCount"`
	ExecutionRate int    `json:"executionRate"`
	FollowThrough string `json:"followThrough"`
}

// EfficiencyInsight compares the fastest and slowest quartiles of responses
type EfficiencyInsight struct {
	FastAvgTime     int     `json:"fastAvgTime"`
	FastAvgAccuracy int     `json:"fastAvgAccuracy"`
	SlowAvgTime     int     `json:"slowAvgTime"`
	SlowAvgAccuracy int     `json:"slowAvgAccuracy"`
	AccuracyGain    int     `json:"accuracyGain"`
	TimeMultiplier  float64 `json:"timeMultiplier"`
	Efficiency      float64 `json:"efficiency"`
}

type MuddyPointInsights struct {
	TotalMuddyPoints int               `json:"totalMuddyPoints"`
	Themes           []MuddyPointTheme `json:"themes"`
}

type MuddyPointTheme struct {
	Theme       string   `json:"theme"`
	Count       int      `json:"count"`
	AvgAccuracy int      `json:"avgAccuracy"`
	Examples    []string `json:"examples"`
}

// InsightKind identifies which rule produced an insight
type InsightKind string

const (
	InsightCalibrationGood           InsightKind = "calibration_good"
	InsightCalibrationOverconfident  InsightKind = "calibration_overconfident"
	InsightCalibrationUnderconfident InsightKind = "calibration_underconfident"
	InsightAccuracyGrowth            InsightKind = "accuracy_growth"
	InsightCalibrationGrowth         InsightKind = "calibration_growth"
	InsightKeepLearning              InsightKind = "keep_learning"
	InsightGoalGap                   InsightKind = "goal_gap"
	InsightGoalConsistent            InsightKind = "goal_consistent"
	InsightStrategyRecommendation    InsightKind = "strategy_recommendation"
	InsightStrategyGoalFit           InsightKind = "strategy_goal_fit"
	InsightPlanFollowThrough         InsightKind = "plan_follow_through"
	InsightEfficiencyDiminishing     InsightKind = "efficiency_diminishing"
	InsightEfficiencyWorthIt         InsightKind = "efficiency_worth_it"
	InsightEfficiencyTradeoff        InsightKind = "efficiency_tradeoff"
	InsightMuddyThemeTip             InsightKind = "muddy_theme_tip"
)

// Insight is a human-readable message derived from the report numbers
type Insight struct {
	Kind    InsightKind `json:"kind"`
	Subject string      `json:"subject,omitempty"`
	Message string      `json:"message"`
}
