package routing

import (
	"regexp"
	"strings"

	"github.com/driveline/driveline-go/internal/models"
)

// humanRequestPatterns match explicit "talk to a human" phrasing.
var humanRequestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(speak|talk)\s+(to|with)\s+(a\s+)?(human|person|someone|agent|representative|rep|manager|salesperson)\b`),
	regexp.MustCompile(`(?i)\b(real|actual|live)\s+(person|human|agent)\b`),
	regexp.MustCompile(`(?i)\bhuman\s+(please|now)\b`),
	regexp.MustCompile(`(?i)\b(stop|no more)\s+(bot|robot|ai)\b`),
	regexp.MustCompile(`(?i)\btransfer\s+me\b`),
}

var urgentWords = []string{
	"urgent", "immediately", "right now", "asap", "emergency", "stranded",
	"broke down", "broken down", "accident", "won't start", "wont start",
	"today only", "right away",
}

var negativeWords = []string{
	"angry", "furious", "terrible", "awful", "horrible", "worst", "scam",
	"ripped off", "rip off", "lied", "lying", "unacceptable", "disappointed",
	"frustrated", "fed up", "never again", "lawyer", "complaint", "refund",
}

var positiveWords = []string{
	"great", "thanks", "thank you", "awesome", "perfect", "love", "excited",
	"appreciate", "wonderful", "helpful",
}

// analyzeSentiment scores emotion and urgency from rule lexicons.
func analyzeSentiment(message string, convCtx *models.ConversationContext) models.SentimentAnalysis {
	lower := strings.ToLower(message)

	score := 0.0
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score -= 0.3
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score += 0.2
		}
	}
	if score < -1 {
		score = -1
	}
	if score > 1 {
		score = 1
	}

	urgency := "normal"
	for _, w := range urgentWords {
		if strings.Contains(lower, w) {
			urgency = "high"
			break
		}
	}
	// Repeated punctuation reads as urgency too.
	if urgency != "high" && (strings.Contains(message, "!!") || strings.Contains(message, "??")) {
		urgency = "high"
	}
	if convCtx != nil && strings.EqualFold(convCtx.Urgency, "high") {
		urgency = "high"
	}

	emotion := "neutral"
	switch {
	case score <= negativeSentimentThreshold:
		emotion = "angry"
	case score < 0:
		emotion = "frustrated"
	case score >= 0.4:
		emotion = "happy"
	}

	return models.SentimentAnalysis{
		Emotion: emotion,
		Score:   score,
		Urgency: urgency,
	}
}

// escalationReason returns the reason a message must be escalated to a
// human, if any. Escalation triggers: explicit human request, high urgency,
// or sentiment at or below the negative threshold.
func escalationReason(message string, sentiment models.SentimentAnalysis) (string, bool) {
	for _, re := range humanRequestPatterns {
		if re.MatchString(message) {
			return "customer requested a human", true
		}
	}
	if sentiment.Urgency == "high" {
		return "high urgency detected", true
	}
	if sentiment.Score <= negativeSentimentThreshold {
		return "negative sentiment threshold crossed", true
	}
	return "", false
}
