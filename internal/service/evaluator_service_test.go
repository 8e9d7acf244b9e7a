package service

import (
	"context"
	"testing"
)

func TestKeyPointEvaluator(t *testing.T) {
	e := NewKeyPointEvaluator()
	points := []string{"Plants convert sunlight into chemical energy", "Oxygen is released", "It happens in chloroplasts"}

	got, err := e.Evaluate(context.Background(), "What is photosynthesis?",
		points, "Plants take sunlight and make chemical energy, and it all happens inside chloroplasts.")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Accuracy != 67 {
		t.Fatalf("expected 67, got %v", got.Accuracy)
	}
	if len(got.MissingPoints) != 1 || got.MissingPoints[0] != "Oxygen is released" {
		t.Fatalf("unexpected missing points %v", got.MissingPoints)
	}
	if got.Feedback == "" {
		t.Fatalf("expected feedback")
	}
}

func TestKeyPointEvaluator_NoPoints(t *testing.T) {
	got, err := NewKeyPointEvaluator().Evaluate(context.Background(), "q", nil, "anything")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Accuracy != 0 || got.CorrectPoints == nil || got.MissingPoints == nil {
		t.Fatalf("expected zero accuracy with empty lists, got %+v", got)
	}
}

func TestKeyPointEvaluator_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewKeyPointEvaluator().Evaluate(ctx, "q", []string{"a point"}, "a"); err == nil {
		t.Fatalf("expected context error")
	}
}
