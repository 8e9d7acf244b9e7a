package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"metacognition/internal/model"
)

type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	// ListByUser returns sessions newest first without rawContent and chunks
	ListByUser(ctx context.Context, userID string, limit, skip int64) ([]*model.Session, error)
	UpdateProgress(ctx context.Context, session *model.Session) error
	UpdateStats(ctx context.Context, id string, stats model.SessionStats) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var session model.Session
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID string, limit, skip int64) ([]*model.Session, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip).
		SetProjection(bson.M{"rawContent": 0, "chunks": 0})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []*model.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateProgress writes chunk completion state, status and stats
func (r *sessionRepo) UpdateProgress(ctx context.Context, session *model.Session) error {
	oid, err := primitive.ObjectIDFromHex(session.ID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"chunks":       session.Chunks,
		"status":       session.Status,
		"sessionStats": session.SessionStats,
		"completedAt":  session.CompletedAt,
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *sessionRepo) UpdateStats(ctx context.Context, id string, stats model.SessionStats) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"sessionStats": stats}})
	return err
}
