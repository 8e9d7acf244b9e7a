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

type ResponseRepository interface {
	Create(ctx context.Context, response *model.Response) error
	GetByID(ctx context.Context, id string) (*model.Response, error)
	// ListBySession returns a session's responses oldest first
	ListBySession(ctx context.Context, sessionID string) ([]*model.Response, error)
	UpdateReflection(ctx context.Context, id string, update model.ReflectionUpdate) error
	Delete(ctx context.Context, id string) error
}

type responseRepository struct {
	collection *mongo.Collection
}

func NewResponseRepository(db *mongo.Database) ResponseRepository {
	return &responseRepository{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepository) Create(ctx context.Context, response *model.Response) error {
	if response.CreatedAt.IsZero() {
		response.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, response)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		response.ID = oid.Hex()
	}
	return nil
}

func (r *responseRepository) GetByID(ctx context.Context, id string) (*model.Response, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var response model.Response
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&response)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) ListBySession(ctx context.Context, sessionID string) ([]*model.Response, error) {
	oid, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	responses := []*model.Response{}
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) UpdateReflection(ctx context.Context, id string, update model.ReflectionUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	// optional fields are only written when sent
	set := bson.M{"strategyHelpful": update.StrategyHelpful}
	if update.GoalAchieved != model.GoalUnrated {
		set["goalAchieved"] = update.GoalAchieved
	}
	if update.NextTimeAdjustment != "" {
		set["nextTimeAdjustment"] = update.NextTimeAdjustment
	}
	if update.StrategyReflection != "" {
		set["strategyReflection"] = update.StrategyReflection
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	return err
}

func (r *responseRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
