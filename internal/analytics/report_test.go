package analytics

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"metacognition/internal/model"
)

var t0 = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func days(n int) time.Time { return t0.Add(time.Duration(n) * 24 * time.Hour) }

func completedSession(id string, chunks int, accuracy, confidence, seconds float64, created time.Time) *model.Session {
	return &model.Session{
		ID:     id,
		UserID: "u1",
		Status: model.SessionCompleted,
		SessionStats: model.SessionStats{
			TotalChunks:       chunks,
			ChunksCompleted:   chunks,
			AverageAccuracy:   accuracy,
			AverageConfidence: confidence,
			TotalTimeSeconds:  seconds,
		},
		CreatedAt: created,
	}
}

func TestBuildReport_NoCompletedSessionsIsEmpty(t *testing.T) {
	sessions := []*model.Session{
		{ID: "a", Status: model.SessionInProgress, CreatedAt: t0},
		{ID: "b", Status: model.SessionInProgress, CreatedAt: t0},
		nil,
	}
	r := BuildReport(sessions, []*model.Response{{Strategy: "ignored", Accuracy: 90}})

	if r.HasData {
		t.Fatalf("expected hasData=false")
	}
	if r.TotalSessions != 2 || r.CompletedSessions != 0 || r.TotalChunks != 0 || r.AverageAccuracy != 0 {
		t.Fatalf("unexpected counts: %+v", r)
	}

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"strategyStats", "weeklyTrends", "goalStats", "strategyGoalInsights", "reflectionPatterns", "insights", "recentSessions"} {
		arr, ok := m[key].([]any)
		if !ok {
			t.Fatalf("expected %s to be an array, got %T", key, m[key])
		}
		if len(arr) != 0 {
			t.Fatalf("expected %s empty, got %v", key, arr)
		}
	}
	if m["efficiencyInsight"] != nil || m["muddyPointInsights"] != nil {
		t.Fatalf("expected null efficiency and muddy insights")
	}
}

func TestBuildReport_WeightsAveragesByCompletedChunks(t *testing.T) {
	sessions := []*model.Session{
		completedSession("s2", 2, 90, 95, 90, days(1)),
		{ID: "s3", Status: model.SessionInProgress, CreatedAt: days(1)},
		completedSession("s1", 1, 60, 65, 45, days(0)),
	}
	r := BuildReport(sessions, nil)

	if !r.HasData {
		t.Fatalf("expected hasData=true")
	}
	if r.TotalSessions != 3 || r.CompletedSessions != 2 {
		t.Fatalf("unexpected session counts: total=%d completed=%d", r.TotalSessions, r.CompletedSessions)
	}
	if r.TotalChunks != 3 {
		t.Fatalf("expected 3 chunks, got %d", r.TotalChunks)
	}
	// (90*2 + 60*1) / 3 = 80, not the mean of means 75
	if r.AverageAccuracy != 80 {
		t.Fatalf("expected weighted accuracy 80, got %d", r.AverageAccuracy)
	}
	if r.AverageConfidence != 85 {
		t.Fatalf("expected weighted confidence 85, got %d", r.AverageConfidence)
	}
	// 135s = 2.25 min
	if r.TotalTimeMinutes != 2 {
		t.Fatalf("expected 2 minutes, got %d", r.TotalTimeMinutes)
	}
	if len(r.RecentSessions) != 3 || r.RecentSessions[0].ID != "s2" {
		t.Fatalf("unexpected recent sessions: %+v", r.RecentSessions)
	}
	if len(r.Insights) == 0 || r.Insights[0].Kind != model.InsightCalibrationGood {
		t.Fatalf("expected calibration insight first, got %+v", r.Insights)
	}
}

func TestBuildReport_RecentSessionsCappedAtFive(t *testing.T) {
	var sessions []*model.Session
	for i := 0; i < 8; i++ {
		sessions = append(sessions, completedSession(string(rune('a'+i)), 1, 50, 50, 60, days(-i)))
	}
	r := BuildReport(sessions, nil)
	if len(r.RecentSessions) != 5 {
		t.Fatalf("expected 5 recent sessions, got %d", len(r.RecentSessions))
	}
	if r.RecentSessions[4].ID != "e" {
		t.Fatalf("expected fetch order kept, got %q last", r.RecentSessions[4].ID)
	}
}

func sampleHistory() ([]*model.Session, []*model.Response) {
	sessions := []*model.Session{
		completedSession("s2", 3, 70, 80, 300, days(8)),
		completedSession("s1", 3, 65, 75, 240, days(0)),
	}
	responses := []*model.Response{
		{Strategy: "visualize", Goal: model.GoalGist, Accuracy: 90, Confidence: 80, TimeSpent: 40, CreatedAt: days(8),
			StrategyHelpful: boolPtr(true), GoalAchieved: model.GoalYes, NextTimeAdjustment: "Try a different strategy"},
		{Strategy: "self-explain", Goal: model.GoalApply, Accuracy: 60, Confidence: 85, TimeSpent: 120, CreatedAt: days(9),
			MuddyPoint: "the formula steps", GoalAchieved: model.GoalNo, NextTimeAdjustment: "try a different strategy"},
		{Strategy: "visualize", Goal: model.GoalGist, Accuracy: 85, Confidence: 85, TimeSpent: 30, CreatedAt: days(9),
			MuddyPoint: "which equation applies", GoalAchieved: model.GoalYes},
		{Strategy: "visualize", Goal: model.GoalApply, Accuracy: 50, Confidence: 70, TimeSpent: 90, CreatedAt: days(0),
			MuddyPoint: "abstract idea", StrategyHelpful: boolPtr(false), GoalAchieved: model.GoalNo},
		{Strategy: "visualize", Goal: model.GoalApply, Accuracy: 55, Confidence: 70, TimeSpent: 60, CreatedAt: days(1),
			GoalAchieved: model.GoalPartial},
		{Strategy: "summarize", Goal: model.GoalExplain, Accuracy: 70, Confidence: 60, TimeSpent: 75, CreatedAt: days(2)},
	}
	return sessions, responses
}

func TestBuildReport_IsDeterministic(t *testing.T) {
	sessions, responses := sampleHistory()

	first, err := json.Marshal(BuildReport(sessions, responses))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(BuildReport(sessions, responses))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("report changed between runs:\n%s\n%s", first, again)
		}
	}
}

func TestBuildReport_RunsEveryReducer(t *testing.T) {
	sessions, responses := sampleHistory()
	r := BuildReport(sessions, responses)

	if len(r.StrategyStats) != 3 || r.StrategyStats[0].Strategy != "visualize" {
		t.Fatalf("unexpected strategy stats: %+v", r.StrategyStats)
	}
	if len(r.WeeklyTrends) != 2 {
		t.Fatalf("expected two weekly buckets, got %+v", r.WeeklyTrends)
	}
	if len(r.GoalStats) != 2 {
		t.Fatalf("expected gist and apply goal stats, got %+v", r.GoalStats)
	}
	if r.GoalStats[0].Goal != model.GoalGist || r.GoalStats[0].AchievementRate != 100 {
		t.Fatalf("expected gist first at 100%%, got %+v", r.GoalStats[0])
	}
	if len(r.StrategyGoalInsights) != 1 || r.StrategyGoalInsights[0].Strategy != "visualize" {
		t.Fatalf("expected visualize strategy-goal insight, got %+v", r.StrategyGoalInsights)
	}
	if len(r.ReflectionPatterns) != 1 || r.ReflectionPatterns[0].Plan != "Try a different strategy" {
		t.Fatalf("expected one reflection pattern with first casing, got %+v", r.ReflectionPatterns)
	}
	if r.EfficiencyInsight == nil {
		t.Fatalf("expected efficiency insight with 6 timed responses")
	}
	if r.MuddyPointInsights == nil || r.MuddyPointInsights.TotalMuddyPoints != 3 {
		t.Fatalf("expected muddy insights over 3 samples, got %+v", r.MuddyPointInsights)
	}
}
