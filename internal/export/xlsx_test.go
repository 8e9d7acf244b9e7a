package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"metacognition/internal/model"
)

func TestWriteDashboard_OneSheetPerSection(t *testing.T) {
	helpful := 67
	report := &model.DashboardReport{
		HasData:           true,
		TotalSessions:     3,
		CompletedSessions: 2,
		AverageAccuracy:   80,
		StrategyStats: []model.StrategyStat{
			{Strategy: "visualize", AverageAccuracy: 88, Uses: 4, HelpfulPercentage: &helpful},
			{Strategy: "reread", AverageAccuracy: 40, Uses: 1},
		},
		WeeklyTrends: []model.WeeklyTrend{{Week: 1, Accuracy: 70}},
		Insights:     []model.Insight{{Kind: model.InsightCalibrationGood, Message: "Great calibration!"}},
	}

	var buf bytes.Buffer
	if err := WriteDashboard(&buf, report); err != nil {
		t.Fatalf("WriteDashboard: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{SheetSummary, SheetStrategies, SheetWeekly, SheetGoals, SheetPlans, SheetInsights}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, sheets)
		}
	}

	rows, err := f.GetRows(SheetStrategies)
	if err != nil {
		t.Fatalf("read strategies: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %v", rows)
	}
	if rows[1][0] != "visualize" || rows[1][3] != "67" {
		t.Fatalf("unexpected strategy row %v", rows[1])
	}

	total, err := f.GetCellValue(SheetSummary, "B2")
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if total != "3" {
		t.Fatalf("expected 3 total sessions, got %q", total)
	}

	msg, err := f.GetCellValue(SheetInsights, "C2")
	if err != nil {
		t.Fatalf("read insights: %v", err)
	}
	if msg != "Great calibration!" {
		t.Fatalf("unexpected insight cell %q", msg)
	}
}
