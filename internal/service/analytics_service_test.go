package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"metacognition/internal/logger"
	"metacognition/internal/model"
)

var base = time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC)

func seedSession(userID string, status model.SessionStatus, created time.Time) *model.Session {
	return &model.Session{
		ID:        primitive.NewObjectID().Hex(),
		UserID:    userID,
		Status:    status,
		CreatedAt: created,
		SessionStats: model.SessionStats{
			TotalChunks:       2,
			ChunksCompleted:   2,
			AverageAccuracy:   70,
			AverageConfidence: 70,
		},
	}
}

func seedResponse(session *model.Session, strategy string, accuracy float64, at time.Time) *model.Response {
	oid, _ := primitive.ObjectIDFromHex(session.ID)
	return &model.Response{
		ID:         primitive.NewObjectID().Hex(),
		SessionID:  oid,
		UserID:     session.UserID,
		Strategy:   strategy,
		Accuracy:   accuracy,
		Confidence: accuracy,
		CreatedAt:  at,
	}
}

func TestAnalyticsService_Dashboard_JoinsInSessionOrder(t *testing.T) {
	older := seedSession("u1", model.SessionCompleted, base)
	newer := seedSession("u1", model.SessionCompleted, base.Add(48*time.Hour))
	open := seedSession("u1", model.SessionInProgress, base.Add(72*time.Hour))
	other := seedSession("u2", model.SessionCompleted, base)

	responses := &fakeResponseRepo{responses: []*model.Response{
		seedResponse(older, "reread", 70, base.Add(time.Minute)),
		seedResponse(newer, "visualize", 70, base.Add(49*time.Hour)),
		seedResponse(other, "other", 99, base),
	}}
	svc := NewAnalyticsService(newFakeSessionRepo(older, newer, open, other), responses, 100, 4, logger.Discard())

	report, err := svc.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if report.TotalSessions != 3 || report.CompletedSessions != 2 {
		t.Fatalf("unexpected counts total=%d completed=%d", report.TotalSessions, report.CompletedSessions)
	}
	if len(report.StrategyStats) != 2 {
		t.Fatalf("expected two strategies, got %+v", report.StrategyStats)
	}
	// equal accuracy, so order is first seen: the newer session's responses come first
	if report.StrategyStats[0].Strategy != "visualize" {
		t.Fatalf("expected newer session first, got %+v", report.StrategyStats)
	}
	if report.RecentSessions[0].ID != open.ID {
		t.Fatalf("expected newest session first in recent list")
	}
}

func TestAnalyticsService_Dashboard_SkipsFailedSession(t *testing.T) {
	good := seedSession("u1", model.SessionCompleted, base)
	bad := seedSession("u1", model.SessionCompleted, base.Add(time.Hour))

	responses := &fakeResponseRepo{
		responses: []*model.Response{
			seedResponse(good, "visualize", 80, base),
			seedResponse(bad, "reread", 20, base.Add(time.Hour)),
		},
		failFor: map[string]error{bad.ID: errors.New("connection reset")},
	}
	svc := NewAnalyticsService(newFakeSessionRepo(good, bad), responses, 100, 2, logger.Discard())

	report, err := svc.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected partial report, got %v", err)
	}
	if report.CompletedSessions != 2 {
		t.Fatalf("session counts must not depend on response fetches, got %d", report.CompletedSessions)
	}
	if len(report.StrategyStats) != 1 || report.StrategyStats[0].Strategy != "visualize" {
		t.Fatalf("expected only the good session's responses, got %+v", report.StrategyStats)
	}
}

func TestAnalyticsService_Dashboard_ListFailureIsReturned(t *testing.T) {
	sessions := newFakeSessionRepo()
	sessions.listErr = errors.New("mongo down")
	svc := NewAnalyticsService(sessions, &fakeResponseRepo{}, 100, 4, logger.Discard())

	if _, err := svc.Dashboard(context.Background(), "u1"); err == nil || !errors.Is(err, sessions.listErr) {
		t.Fatalf("expected wrapped list error, got %v", err)
	}
}

func TestAnalyticsService_Dashboard_NoCompletedSessionsSkipsFetch(t *testing.T) {
	open := seedSession("u1", model.SessionInProgress, base)
	svc := NewAnalyticsService(newFakeSessionRepo(open), &fakeResponseRepo{block: true}, 100, 4, logger.Discard())

	report, err := svc.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if report.HasData || report.TotalSessions != 1 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestAnalyticsService_Dashboard_Cancelled(t *testing.T) {
	done := seedSession("u1", model.SessionCompleted, base)
	svc := NewAnalyticsService(newFakeSessionRepo(done), &fakeResponseRepo{block: true}, 100, 4, logger.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := svc.Dashboard(ctx, "u1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
