// Package export renders a dashboard report as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"metacognition/internal/model"
)

const (
	SheetSummary    = "Summary"
	SheetStrategies = "Strategies"
	SheetWeekly     = "Weekly"
	SheetGoals      = "Goals"
	SheetPlans      = "Plans"
	SheetInsights   = "Insights"
)

// ContentType is the MIME type of the workbook written by WriteDashboard
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteDashboard writes the report as a workbook with one sheet per section
func WriteDashboard(w io.Writer, report *model.DashboardReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summaryRows(report)},
		{SheetStrategies, strategyRows(report.StrategyStats)},
		{SheetWeekly, weeklyRows(report.WeeklyTrends)},
		{SheetGoals, goalRows(report.GoalStats)},
		{SheetPlans, planRows(report.ReflectionPatterns)},
		{SheetInsights, insightRows(report.Insights)},
	}

	for _, sh := range sheets {
		if sh.name != SheetSummary {
			if _, err := f.NewSheet(sh.name); err != nil {
				return fmt.Errorf("new sheet %s: %w", sh.name, err)
			}
		}
		if err := writeRows(f, sh.name, sh.rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func summaryRows(r *model.DashboardReport) [][]interface{} {
	return [][]interface{}{
		{"Metric", "Value"},
		{"Total sessions", r.TotalSessions},
		{"Completed sessions", r.CompletedSessions},
		{"Chunks completed", r.TotalChunks},
		{"Average accuracy", r.AverageAccuracy},
		{"Average confidence", r.AverageConfidence},
		{"Total minutes", r.TotalTimeMinutes},
	}
}

func strategyRows(stats []model.StrategyStat) [][]interface{} {
	rows := [][]interface{}{{"Strategy", "Average accuracy", "Uses", "Helpful %"}}
	for _, s := range stats {
		rows = append(rows, []interface{}{s.Strategy, s.AverageAccuracy, s.Uses, optional(s.HelpfulPercentage)})
	}
	return rows
}

func weeklyRows(weeks []model.WeeklyTrend) [][]interface{} {
	rows := [][]interface{}{{"Week", "Accuracy", "Confidence", "Calibration error"}}
	for _, w := range weeks {
		rows = append(rows, []interface{}{w.Week, w.Accuracy, w.Confidence, w.CalibrationError})
	}
	return rows
}

func goalRows(goals []model.GoalStat) [][]interface{} {
	rows := [][]interface{}{{"Goal", "Achievement rate", "Average accuracy", "Attempts"}}
	for _, g := range goals {
		rows = append(rows, []interface{}{g.Goal, g.AchievementRate, g.AverageAccuracy, g.Attempts})
	}
	return rows
}

func planRows(plans []model.ReflectionPattern) [][]interface{} {
	rows := [][]interface{}{{"Plan", "Times planned", "Times followed", "Execution rate", "Follow-through"}}
	for _, p := range plans {
		rows = append(rows, []interface{}{p.Plan, p.Count, p.ExecutedCount, p.ExecutionRate, p.FollowThrough})
	}
	return rows
}

func insightRows(insights []model.Insight) [][]interface{} {
	rows := [][]interface{}{{"Kind", "Subject", "Message"}}
	for _, in := range insights {
		rows = append(rows, []interface{}{string(in.Kind), in.Subject, in.Message})
	}
	return rows
}

// optional renders a nil rate as an empty cell
func optional(p *int) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
