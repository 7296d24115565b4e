package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/driveline/driveline-go/internal/llm"
	"github.com/driveline/driveline-go/internal/metrics"
	"github.com/driveline/driveline-go/internal/models"
)

type fakeClassifier struct {
	result llm.Classification
	err    error
	called bool
}

func (f *fakeClassifier) Classify(context.Context, string, []string, []llm.ClassExample) (llm.Classification, error) {
	f.called = true
	return f.result, f.err
}

func TestAnalyzeEscalatesOnHumanRequest(t *testing.T) {
	tests := []string{
		"I want to speak to a human right now",
		"let me talk with a real person",
		"can I talk to someone",
		"transfer me to your manager",
		"stop bot, human please",
	}

	a := NewAnalyzer(nil, metrics.NewCollector(), nil)
	for _, msg := range tests {
		t.Run(msg, func(t *testing.T) {
			decision, _ := a.Analyze(context.Background(), msg, "dealer-1", "user-1", nil)
			if !decision.ShouldEscalate {
				t.Fatalf("expected escalation for %q", msg)
			}
			if decision.EscalationReason == "" {
				t.Errorf("escalation reason missing")
			}
			if decision.Priority != models.PriorityUrgent {
				t.Errorf("priority = %s, want urgent", decision.Priority)
			}
		})
	}
}

func TestAnalyzeEscalatesOnHighUrgency(t *testing.T) {
	a := NewAnalyzer(nil, metrics.NewCollector(), nil)
	decision, sentiment := a.Analyze(context.Background(), "my car broke down and I'm stranded", "dealer-1", "user-1", nil)
	if sentiment.Urgency != "high" {
		t.Fatalf("urgency = %q, want high", sentiment.Urgency)
	}
	if !decision.ShouldEscalate {
		t.Errorf("high urgency must escalate")
	}
}

func TestAnalyzeEscalatesOnNegativeSentiment(t *testing.T) {
	a := NewAnalyzer(nil, metrics.NewCollector(), nil)
	decision, sentiment := a.Analyze(context.Background(), "this is a scam, you lied, absolutely unacceptable", "dealer-1", "user-1", nil)
	if sentiment.Score > negativeSentimentThreshold {
		t.Fatalf("score = %v, want <= %v", sentiment.Score, negativeSentimentThreshold)
	}
	if !decision.ShouldEscalate {
		t.Errorf("negative sentiment must escalate")
	}
}

func TestAnalyzeUsesClassifier(t *testing.T) {
	classifier := &fakeClassifier{
		result: llm.Classification{Label: string(models.HandlerInventory), Confidence: 0.85},
	}
	a := NewAnalyzer(classifier, metrics.NewCollector(), nil)

	decision, _ := a.Analyze(context.Background(), "do you have any SUVs in stock", "dealer-1", "user-1", nil)
	if !classifier.called {
		t.Fatalf("classifier not invoked")
	}
	if decision.ShouldEscalate {
		t.Fatalf("unexpected escalation")
	}
	if decision.RecommendedHandler != string(models.HandlerInventory) {
		t.Errorf("handler = %q, want inventory", decision.RecommendedHandler)
	}
	if decision.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", decision.Confidence)
	}
}

func TestAnalyzeClassifierFailureFallsBackToKeywords(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("provider down")}
	a := NewAnalyzer(classifier, metrics.NewCollector(), nil)

	decision, _ := a.Analyze(context.Background(), "I need an oil change", "dealer-1", "user-1", nil)
	if decision.RecommendedHandler != string(models.HandlerService) {
		t.Errorf("handler = %q, want service", decision.RecommendedHandler)
	}
	if decision.Confidence >= 0.7 {
		t.Errorf("keyword fallback confidence %v should stay below override threshold", decision.Confidence)
	}
}

func TestAnalyzeKeywordRulesRecognizeMakeAndModel(t *testing.T) {
	// No classifier at all: the message names a make, model, and model year
	// but none of the generic vehicle words, and must still route to
	// inventory instead of general.
	a := NewAnalyzer(nil, metrics.NewCollector(), nil)

	decision, _ := a.Analyze(context.Background(), "do you have a 2023 Honda Civic under $28000", "dealer-1", "user-1", nil)
	if decision.ShouldEscalate {
		t.Fatalf("unexpected escalation")
	}
	if decision.RecommendedHandler != string(models.HandlerInventory) {
		t.Errorf("handler = %q, want inventory", decision.RecommendedHandler)
	}
	if decision.Confidence < 0.5 {
		t.Errorf("confidence = %v, want >= 0.5", decision.Confidence)
	}
}

func TestAnalyzeNothingMatchesDefaultsToGeneral(t *testing.T) {
	a := NewAnalyzer(nil, metrics.NewCollector(), nil)
	decision, _ := a.Analyze(context.Background(), "xyzzy plugh", "dealer-1", "user-1", nil)
	if decision.RecommendedHandler != string(models.HandlerGeneral) {
		t.Errorf("handler = %q, want general", decision.RecommendedHandler)
	}
	if decision.Confidence > 0.5 {
		t.Errorf("confidence = %v, want low", decision.Confidence)
	}
}

func TestAnalyzeSentimentScores(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		wantEmotion string
		wantUrgency string
	}{
		{"neutral", "what are your hours", "neutral", "normal"},
		{"positive", "thanks, that was awesome", "happy", "normal"},
		{"mildly negative", "I'm a bit disappointed", "frustrated", "normal"},
		{"punctuation urgency", "where is my car??", "neutral", "high"},
		{"context urgency", "ok", "neutral", "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var convCtx *models.ConversationContext
			if tt.name == "context urgency" {
				convCtx = &models.ConversationContext{Urgency: "high"}
			}
			got := analyzeSentiment(tt.message, convCtx)
			if got.Emotion != tt.wantEmotion {
				t.Errorf("emotion = %q, want %q", got.Emotion, tt.wantEmotion)
			}
			if got.Urgency != tt.wantUrgency {
				t.Errorf("urgency = %q, want %q", got.Urgency, tt.wantUrgency)
			}
		})
	}
}
