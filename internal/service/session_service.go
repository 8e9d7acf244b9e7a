package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"metacognition/internal/cache"
	"metacognition/internal/logger"
	"metacognition/internal/model"
	"metacognition/internal/repository"
)

const (
	previewLength    = 100
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// SessionService handles learning session lifecycle
type SessionService struct {
	sessions    repository.SessionRepo
	cache       cache.SessionCache
	broadcaster Broadcaster
	log         *logger.Logger
	now         func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(sessions repository.SessionRepo, sessionCache cache.SessionCache, log *logger.Logger) *SessionService {
	return &SessionService{
		sessions:    sessions,
		cache:       sessionCache,
		broadcaster: nopBroadcaster{},
		log:         log.Component("sessions"),
		now:         time.Now,
	}
}

// SetBroadcaster sets the broadcaster for dashboard refresh events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create stores a new in-progress session from already split content
func (s *SessionService) Create(ctx context.Context, userID string, req *model.CreateSessionRequest) (*model.Session, error) {
	chunks := make([]model.Chunk, len(req.Chunks))
	for i, in := range req.Chunks {
		id := in.ChunkID
		if id == "" {
			id = fmt.Sprintf("chunk_%d", i)
		}
		chunks[i] = model.Chunk{
			ChunkID:        id,
			Topic:          in.Topic,
			MiniTeach:      in.MiniTeach,
			Question:       in.Question,
			ExpectedPoints: in.ExpectedPoints,
		}
	}

	preview := strings.TrimSpace(req.ContentPreview)
	if preview == "" {
		preview = truncate(req.RawContent, previewLength)
	}

	session := &model.Session{
		UserID:         userID,
		RawContent:     req.RawContent,
		ContentPreview: preview,
		Status:         model.SessionInProgress,
		Chunks:         chunks,
		SessionStats:   model.SessionStats{TotalChunks: len(chunks)},
		CreatedAt:      s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "session_id": session.ID, "chunks": len(chunks)}).Info("session created")
	return session, nil
}

// List returns the user's sessions newest first
func (s *SessionService) List(ctx context.Context, userID string, limit, skip int) ([]model.SessionPreview, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if skip < 0 {
		skip = 0
	}

	sessions, err := s.sessions.ListByUser(ctx, userID, int64(limit), int64(skip))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]model.SessionPreview, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, session.Preview())
	}
	return out, nil
}

// Get loads a session through the cache and checks ownership
func (s *SessionService) Get(ctx context.Context, userID, id string) (*model.Session, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}

	session, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("session_id", id).Warn("session cache read failed")
	}

	if session == nil {
		session, err = s.sessions.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		if err := s.cache.Set(ctx, session); err != nil {
			s.log.WithError(err).WithField("session_id", id).Warn("session cache write failed")
		}
	}

	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

// CompleteChunk marks one chunk done and completes the session once every chunk is
func (s *SessionService) CompleteChunk(ctx context.Context, userID, id, chunkID string) (*model.Session, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}

	// always read through to storage so the update starts from fresh state
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}

	chunk := session.FindChunk(chunkID)
	if chunk == nil {
		return nil, ErrChunkNotFound
	}
	chunk.Completed = true

	completed := 0
	for _, c := range session.Chunks {
		if c.Completed {
			completed++
		}
	}
	session.SessionStats.TotalChunks = len(session.Chunks)
	session.SessionStats.ChunksCompleted = completed

	if completed == len(session.Chunks) && !session.IsCompleted() {
		now := s.now()
		session.Status = model.SessionCompleted
		session.CompletedAt = &now
	}

	if err := s.sessions.UpdateProgress(ctx, session); err != nil {
		return nil, fmt.Errorf("update session progress: %w", err)
	}
	s.invalidate(ctx, id)

	s.broadcaster.NotifyUser(userID, EventDashboardStale, map[string]interface{}{
		"sessionId": id,
		"status":    session.Status,
	})
	return session, nil
}

func (s *SessionService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("session_id", id).Warn("session cache invalidation failed")
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
