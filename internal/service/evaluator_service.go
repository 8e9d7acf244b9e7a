package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"metacognition/internal/model"
)

// Evaluator grades a free-text answer against a chunk's expected points.
// LLM-backed graders plug in here.
type Evaluator interface {
	Evaluate(ctx context.Context, question string, expectedPoints []string, answer string) (*model.Evaluation, error)
}

// minSignificantWord is the shortest word that counts toward key-point coverage
const minSignificantWord = 4

// KeyPointEvaluator grades by word overlap. A point is covered when at least
// half of its significant words appear in the answer.
type KeyPointEvaluator struct{}

func NewKeyPointEvaluator() *KeyPointEvaluator {
	return &KeyPointEvaluator{}
}

func (e *KeyPointEvaluator) Evaluate(ctx context.Context, question string, expectedPoints []string, answer string) (*model.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answerWords := make(map[string]bool)
	for _, w := range significantWords(answer) {
		answerWords[w] = true
	}

	result := &model.Evaluation{
		CorrectPoints: []string{},
		MissingPoints: []string{},
	}
	for _, point := range expectedPoints {
		if pointCovered(point, answerWords) {
			result.CorrectPoints = append(result.CorrectPoints, point)
		} else {
			result.MissingPoints = append(result.MissingPoints, point)
		}
	}

	if len(expectedPoints) > 0 {
		result.Accuracy = math.Floor(float64(len(result.CorrectPoints))/float64(len(expectedPoints))*100 + 0.5)
	}
	result.Feedback = feedbackFor(result)
	return result, nil
}

func pointCovered(point string, answerWords map[string]bool) bool {
	words := significantWords(point)
	if len(words) == 0 {
		return false
	}
	hits := 0
	for _, w := range words {
		if answerWords[w] {
			hits++
		}
	}
	return hits*2 >= len(words)
}

func significantWords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minSignificantWord {
			out = append(out, f)
		}
	}
	return out
}

func feedbackFor(e *model.Evaluation) string {
	total := len(e.CorrectPoints) + len(e.MissingPoints)
	switch {
	case total == 0:
		return "No key points were defined for this chunk."
	case len(e.MissingPoints) == 0:
		return "You covered every key point."
	case len(e.CorrectPoints) == 0:
		return fmt.Sprintf("Your answer missed all %d key points. Review the mini lesson and try again.", total)
	default:
		return fmt.Sprintf("You covered %d of %d key points. Missing: %s.", len(e.CorrectPoints), total, strings.Join(e.MissingPoints, "; "))
	}
}
