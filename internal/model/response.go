package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Learning goals selected in the plan phase
const (
	GoalGist    = "gist"
	GoalExplain = "explain"
	GoalApply   = "apply"
)

// GoalOutcome is the learner's own verdict on whether the chunk goal was met
type GoalOutcome string

const (
	GoalUnrated GoalOutcome = ""
	GoalYes     GoalOutcome = "yes"
	GoalPartial GoalOutcome = "partial"
	GoalNo      GoalOutcome = "no"
)

// UnmarshalBSONValue accepts the string enum as well as legacy boolean documents
func (g *GoalOutcome) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bsoncore.Value{Type: t, Data: data}
	switch t {
	case bsontype.String:
		s, ok := v.StringValueOK()
		if !ok {
			return fmt.Errorf("goalAchieved: malformed string")
		}
		*g = GoalOutcome(s)
	case bsontype.Boolean:
		b, ok := v.BooleanOK()
		if !ok {
			return fmt.Errorf("goalAchieved: malformed boolean")
		}
		if b {
			*g = GoalYes
		} else {
			*g = GoalNo
		}
	case bsontype.Null, bsontype.Undefined:
		*g = GoalUnrated
	default:
		return fmt.Errorf("goalAchieved: unsupported bson type %s", t)
	}
	return nil
}

// MarshalJSON renders an unrated outcome as null
func (g GoalOutcome) MarshalJSON() ([]byte, error) {
	if g == GoalUnrated {
		return []byte("null"), nil
	}
	return json.Marshal(string(g))
}

// Response is one answered chunk: plan, monitor, evaluate and reflection phases
type Response struct {
	ID         string             `json:"_id" bson:"_id,omitempty"`
	SessionID  primitive.ObjectID `json:"sessionId" bson:"sessionId"`
	UserID     string             `json:"userId" bson:"userId"`
	ChunkID    string             `json:"chunkId" bson:"chunkId"`
	ChunkTopic string             `json:"chunkTopic" bson:"chunkTopic"`

	// Plan phase
	Goal                      string `json:"goal" bson:"goal"`
	Strategy                  string `json:"strategy" bson:"strategy"`
	CustomStrategyDescription string `json:"customStrategyDescription,omitempty" bson:"customStrategyDescription,omitempty"`

	// Monitor phase
	Question   string  `json:"question" bson:"question"`
	UserAnswer string  `json:"userAnswer" bson:"userAnswer"`
	Confidence float64 `json:"confidence" bson:"confidence"` // 0-100, self reported
	MuddyPoint string  `json:"muddyPoint" bson:"muddyPoint"`

	// Evaluate phase
	ExpectedPoints       []string `json:"expectedPoints" bson:"expectedPoints"`
	CorrectPoints        []string `json:"correctPoints" bson:"correctPoints"`
	MissingPoints        []string `json:"missingPoints" bson:"missingPoints"`
	Accuracy             float64  `json:"accuracy" bson:"accuracy"` // 0-100, graded
	CalibrationError     float64  `json:"calibrationError" bson:"calibrationError"`
	CalibrationDirection string   `json:"calibrationDirection" bson:"calibrationDirection"`
	Feedback             string   `json:"feedback" bson:"feedback"`

	// Reflection, patched after evaluation
	StrategyHelpful    *bool       `json:"strategyHelpful" bson:"strategyHelpful"`
	StrategyReflection string      `json:"strategyReflection,omitempty" bson:"strategyReflection,omitempty"`
	GoalAchieved       GoalOutcome `json:"goalAchieved" bson:"goalAchieved"`
	NextTimeAdjustment string      `json:"nextTimeAdjustment" bson:"nextTimeAdjustment"`

	TimeSpent float64   `json:"timeSpent" bson:"timeSpentSeconds"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// ReflectionUpdate is the set of fields patched in the reflection phase
type ReflectionUpdate struct {
	StrategyHelpful    bool
	StrategyReflection string
	GoalAchieved       GoalOutcome
	NextTimeAdjustment string
}

// Apply copies the patch onto r. Empty optional fields leave r's values in place.
func (u ReflectionUpdate) Apply(r *Response) {
	helpful := u.StrategyHelpful
	r.StrategyHelpful = &helpful
	if u.GoalAchieved != GoalUnrated {
		r.GoalAchieved = u.GoalAchieved
	}
	if u.NextTimeAdjustment != "" {
		r.NextTimeAdjustment = u.NextTimeAdjustment
	}
	if u.StrategyReflection != "" {
		r.StrategyReflection = u.StrategyReflection
	}
}

// Evaluation is the grading result for one answer
type Evaluation struct {
	Accuracy      float64  `json:"accuracy"`
	CorrectPoints []string `json:"correctPoints"`
	MissingPoints []string `json:"missingPoints"`
	Feedback      string   `json:"feedback"`
}

// CalibrationDirection labels the sign of confidence minus accuracy
func CalibrationDirection(calibrationError float64) string {
	switch {
	case calibrationError > 0:
		return "overconfident"
	case calibrationError < 0:
		return "underconfident"
	default:
		return "calibrated"
	}
}

// SubmitResponseRequest is the request body for answering one chunk
type SubmitResponseRequest struct {
	SessionID                 string  `json:"sessionId" validate:"required,len=24,hexadecimal"`
	ChunkID                   string  `json:"chunkId" validate:"required"`
	Goal                      string  `json:"goal" validate:"required,oneof=gist explain apply"`
	Strategy                  string  `json:"strategy" validate:"required,max=200"`
	CustomStrategyDescription string  `json:"customStrategyDescription" validate:"omitempty,max=500"`
	UserAnswer                string  `json:"userAnswer" validate:"required"`
	Confidence                float64 `json:"confidence" validate:"min=0,max=100"`
	MuddyPoint                string  `json:"muddyPoint" validate:"omitempty,max=1000"`
	TimeSpent                 float64 `json:"timeSpent" validate:"min=0"`
}

// ReflectionRequest is the request body for the reflection phase
type ReflectionRequest struct {
	StrategyHelpful    *bool  `json:"strategyHelpful" validate:"required"`
	StrategyReflection string `json:"strategyReflection" validate:"omitempty,max=1000"`
	GoalAchieved       string `json:"goalAchieved" validate:"omitempty,oneof=yes partial no"`
	NextTimeAdjustment string `json:"nextTimeAdjustment" validate:"omitempty,max=500"`
}

// Update converts a validated request into the patch applied to storage
func (r *ReflectionRequest) Update() ReflectionUpdate {
	u := ReflectionUpdate{
		StrategyReflection: strings.TrimSpace(r.StrategyReflection),
		GoalAchieved:       GoalOutcome(r.GoalAchieved),
		NextTimeAdjustment: strings.TrimSpace(r.NextTimeAdjustment),
	}
	if r.StrategyHelpful != nil {
		u.StrategyHelpful = *r.StrategyHelpful
	}
	return u
}
