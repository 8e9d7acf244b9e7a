package model

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Chunk is one unit of learning content with its question and expected answer points
type Chunk struct {
	ChunkID        string   `json:"chunkId" bson:"chunkId"`
	Topic          string   `json:"topic" bson:"topic"`
	MiniTeach      string   `json:"miniTeach" bson:"miniTeach"`
	Question       string   `json:"question" bson:"question"`
	ExpectedPoints []string `json:"expectedPoints" bson:"expectedPoints"`
	Completed      bool     `json:"completed" bson:"completed"`
}

// SessionStats is the rolled-up progress of a session, refreshed on every response
type SessionStats struct {
	TotalChunks       int     `json:"totalChunks" bson:"totalChunks"`
	ChunksCompleted   int     `json:"chunksCompleted" bson:"chunksCompleted"`
	AverageAccuracy   float64 `json:"averageAccuracy" bson:"averageAccuracy"`
	AverageConfidence float64 `json:"averageConfidence" bson:"averageConfidence"`
	CalibrationError  float64 `json:"calibrationError" bson:"calibrationError"`
	TotalTimeSeconds  float64 `json:"totalTimeSeconds" bson:"totalTimeSeconds"`
}

type Session struct {
	ID             string        `json:"_id" bson:"_id,omitempty"`
	UserID         string        `json:"userId" bson:"userId"`
	RawContent     string        `json:"rawContent,omitempty" bson:"rawContent"`
	ContentPreview string        `json:"contentPreview" bson:"contentPreview"`
	Status         SessionStatus `json:"status" bson:"status"`
	Chunks         []Chunk       `json:"chunks,omitempty" bson:"chunks"`
	SessionStats   SessionStats  `json:"sessionStats" bson:"sessionStats"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
	CompletedAt    *time.Time    `json:"completedAt" bson:"completedAt"`
}

// IsCompleted reports whether every chunk of the session has been finished
func (s *Session) IsCompleted() bool {
	return s.Status == SessionCompleted
}

// FindChunk returns the chunk with the given id, or nil
func (s *Session) FindChunk(chunkID string) *Chunk {
	for i := range s.Chunks {
		if s.Chunks[i].ChunkID == chunkID {
			return &s.Chunks[i]
		}
	}
	return nil
}

// Preview strips the heavy fields for list views
func (s *Session) Preview() SessionPreview {
	return SessionPreview{
		ID:             s.ID,
		ContentPreview: s.ContentPreview,
		Status:         s.Status,
		SessionStats:   s.SessionStats,
		CreatedAt:      s.CreatedAt,
		CompletedAt:    s.CompletedAt,
	}
}

// SessionPreview is the list/dashboard view of a session
type SessionPreview struct {
	ID             string        `json:"_id" bson:"_id"`
	ContentPreview string        `json:"contentPreview" bson:"contentPreview"`
	Status         SessionStatus `json:"status" bson:"status"`
	SessionStats   SessionStats  `json:"sessionStats" bson:"sessionStats"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
	CompletedAt    *time.Time    `json:"completedAt" bson:"completedAt"`
}

// ChunkInput is one chunk as produced by the content splitter
type ChunkInput struct {
	ChunkID        string   `json:"chunkId" validate:"omitempty,max=64"`
	Topic          string   `json:"topic" validate:"required"`
	MiniTeach      string   `json:"miniTeach"`
	Question       string   `json:"question" validate:"required"`
	ExpectedPoints []string `json:"expectedPoints" validate:"required,min=1,dive,required"`
}

// CreateSessionRequest is the request body for uploading learning content
type CreateSessionRequest struct {
	RawContent     string       `json:"rawContent" validate:"required"`
	ContentPreview string       `json:"contentPreview" validate:"omitempty,max=300"`
	Chunks         []ChunkInput `json:"chunks" validate:"required,min=1,dive"`
}

type CompleteChunkRequest struct {
	ChunkID string `json:"chunkId" validate:"required"`
}
