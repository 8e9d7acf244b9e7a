package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"metacognition/internal/analytics"
	"metacognition/internal/logger"
	"metacognition/internal/model"
	"metacognition/internal/repository"
)

// AnalyticsService loads a learner's history and builds the dashboard report.
// Nothing it computes is stored.
type AnalyticsService struct {
	sessions     repository.SessionRepo
	responses    repository.ResponseRepository
	sessionLimit int
	concurrency  int
	log          *logger.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	sessions repository.SessionRepo,
	responses repository.ResponseRepository,
	sessionLimit, concurrency int,
	log *logger.Logger,
) *AnalyticsService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AnalyticsService{
		sessions:     sessions,
		responses:    responses,
		sessionLimit: sessionLimit,
		concurrency:  concurrency,
		log:          log.Component("analytics"),
	}
}

// Dashboard builds the report for one user. Only a failure to list the
// sessions themselves is returned; per-session response failures are
// logged and that session's responses are left out.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string) (*model.DashboardReport, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID, int64(s.sessionLimit), 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	completed := analytics.CompletedSessions(sessions)
	if len(completed) == 0 {
		return analytics.BuildReport(sessions, nil), nil
	}

	responses, err := s.loadResponses(ctx, userID, completed)
	if err != nil {
		return nil, err
	}

	report := analytics.BuildReport(sessions, responses)
	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"sessions":  len(sessions),
		"completed": len(completed),
		"responses": len(responses),
	}).Debug("dashboard built")
	return report, nil
}

// loadResponses fetches responses per session concurrently and joins them in
// session order, each session's responses oldest first
func (s *AnalyticsService) loadResponses(ctx context.Context, userID string, sessions []*model.Session) ([]*model.Response, error) {
	perSession := make([][]*model.Response, len(sessions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, session := range sessions {
		i, session := i, session
		g.Go(func() error {
			responses, err := s.responses.ListBySession(gctx, session.ID)
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"user_id":    userID,
					"session_id": session.ID,
				}).Warn("skipping session responses")
				return nil
			}
			perSession[i] = responses
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, rs := range perSession {
		total += len(rs)
	}
	out := make([]*model.Response, 0, total)
	for _, rs := range perSession {
		out = append(out, rs...)
	}
	return out, nil
}
