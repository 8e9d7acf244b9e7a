package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"metacognition/internal/cache"
	"metacognition/internal/logger"
	"metacognition/internal/model"
	"metacognition/internal/repository"
)

// ResponseService handles answer submission, grading and reflection
type ResponseService struct {
	responses    repository.ResponseRepository
	sessions     repository.SessionRepo
	sessionCache cache.SessionCache
	evaluator    Evaluator
	broadcaster  Broadcaster
	log          *logger.Logger
	now          func() time.Time
}

// NewResponseService creates a new response service
func NewResponseService(
	responses repository.ResponseRepository,
	sessions repository.SessionRepo,
	sessionCache cache.SessionCache,
	evaluator Evaluator,
	log *logger.Logger,
) *ResponseService {
	return &ResponseService{
		responses:    responses,
		sessions:     sessions,
		sessionCache: sessionCache,
		evaluator:    evaluator,
		broadcaster:  nopBroadcaster{},
		log:          log.Component("responses"),
		now:          time.Now,
	}
}

// SetBroadcaster sets the broadcaster for dashboard refresh events
func (s *ResponseService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit grades an answer, stores the response and refreshes session stats
func (s *ResponseService) Submit(ctx context.Context, userID string, req *model.SubmitResponseRequest) (*model.Response, error) {
	sessionOID, err := primitive.ObjectIDFromHex(req.SessionID)
	if err != nil {
		return nil, ErrInvalidID
	}

	session, err := s.ownedSession(ctx, userID, req.SessionID)
	if err != nil {
		return nil, err
	}
	chunk := session.FindChunk(req.ChunkID)
	if chunk == nil {
		return nil, ErrChunkNotFound
	}

	eval, err := s.evaluator.Evaluate(ctx, chunk.Question, chunk.ExpectedPoints, req.UserAnswer)
	if err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}

	calibrationError := req.Confidence - eval.Accuracy
	response := &model.Response{
		SessionID:                 sessionOID,
		UserID:                    userID,
		ChunkID:                   chunk.ChunkID,
		ChunkTopic:                chunk.Topic,
		Goal:                      req.Goal,
		Strategy:                  req.Strategy,
		CustomStrategyDescription: req.CustomStrategyDescription,
		Question:                  chunk.Question,
		UserAnswer:                req.UserAnswer,
		Confidence:                req.Confidence,
		MuddyPoint:                req.MuddyPoint,
		ExpectedPoints:            chunk.ExpectedPoints,
		CorrectPoints:             eval.CorrectPoints,
		MissingPoints:             eval.MissingPoints,
		Accuracy:                  eval.Accuracy,
		CalibrationError:          calibrationError,
		CalibrationDirection:      model.CalibrationDirection(calibrationError),
		Feedback:                  eval.Feedback,
		TimeSpent:                 req.TimeSpent,
		CreatedAt:                 s.now(),
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, fmt.Errorf("create response: %w", err)
	}

	if err := s.refreshStats(ctx, session); err != nil {
		// the response is stored; stats catch up on the next submission
		s.log.WithError(err).WithField("session_id", session.ID).Error("refresh session stats failed")
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": session.ID,
		"chunk_id":   chunk.ChunkID,
		"accuracy":   response.Accuracy,
	}).Info("response graded")

	s.broadcaster.NotifyUser(userID, EventDashboardStale, map[string]interface{}{
		"sessionId":  session.ID,
		"responseId": response.ID,
	})
	return response, nil
}

// ListBySession returns a session's responses oldest first
func (s *ResponseService) ListBySession(ctx context.Context, userID, sessionID string) ([]*model.Response, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	responses, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responses, nil
}

// PatchReflection records the reflection phase on an owned response
func (s *ResponseService) PatchReflection(ctx context.Context, userID, id string, update model.ReflectionUpdate) (*model.Response, error) {
	response, err := s.ownedResponse(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.responses.UpdateReflection(ctx, id, update); err != nil {
		return nil, fmt.Errorf("update reflection: %w", err)
	}

	update.Apply(response)

	s.broadcaster.NotifyUser(userID, EventDashboardStale, map[string]interface{}{
		"responseId": id,
	})
	return response, nil
}

// Delete removes an owned response and refreshes its session's stats
func (s *ResponseService) Delete(ctx context.Context, userID, id string) error {
	response, err := s.ownedResponse(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.responses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete response: %w", err)
	}

	sessionID := response.SessionID.Hex()
	session, err := s.sessions.GetByID(ctx, sessionID)
	switch {
	case err != nil:
		s.log.WithError(err).WithField("session_id", sessionID).Warn("load session after delete failed")
	case session != nil:
		if err := s.refreshStats(ctx, session); err != nil {
			s.log.WithError(err).WithField("session_id", sessionID).Error("refresh session stats failed")
		}
	}

	s.broadcaster.NotifyUser(userID, EventDashboardStale, map[string]interface{}{
		"sessionId":  sessionID,
		"responseId": id,
	})
	return nil
}

func (s *ResponseService) ownedSession(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	if !primitive.IsValidObjectID(sessionID) {
		return nil, ErrInvalidID
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

func (s *ResponseService) ownedResponse(ctx context.Context, userID, id string) (*model.Response, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}
	response, err := s.responses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get response: %w", err)
	}
	if response == nil {
		return nil, ErrResponseNotFound
	}
	if response.UserID != userID {
		return nil, ErrForbidden
	}
	return response, nil
}

// refreshStats recomputes the session's rolling averages from its responses
func (s *ResponseService) refreshStats(ctx context.Context, session *model.Session) error {
	responses, err := s.responses.ListBySession(ctx, session.ID)
	if err != nil {
		return err
	}

	stats := sessionStats(session, responses)
	if err := s.sessions.UpdateStats(ctx, session.ID, stats); err != nil {
		return err
	}
	if err := s.sessionCache.Delete(ctx, session.ID); err != nil {
		s.log.WithError(err).WithField("session_id", session.ID).Warn("session cache invalidation failed")
	}
	return nil
}

func sessionStats(session *model.Session, responses []*model.Response) model.SessionStats {
	stats := session.SessionStats
	stats.TotalChunks = len(session.Chunks)
	if len(responses) == 0 {
		stats.AverageAccuracy, stats.AverageConfidence = 0, 0
		stats.CalibrationError, stats.TotalTimeSeconds = 0, 0
		return stats
	}

	var accuracy, confidence, seconds float64
	for _, r := range responses {
		accuracy += r.Accuracy
		confidence += r.Confidence
		seconds += r.TimeSpent
	}
	n := float64(len(responses))

	stats.AverageAccuracy = math.Floor(accuracy/n + 0.5)
	stats.AverageConfidence = math.Floor(confidence/n + 0.5)
	stats.CalibrationError = stats.AverageConfidence - stats.AverageAccuracy
	stats.TotalTimeSeconds = seconds
	return stats
}
