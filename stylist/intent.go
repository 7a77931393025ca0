package stylist

import "strings"

// Intent labels for free-text messages in the ready stage.
const (
	IntentRequestOutfit    = "request_outfit"
	IntentAddGarment       = "add_garment"
	IntentSetStyle         = "set_style"
	IntentFeedbackPositive = "feedback_positive"
	IntentFeedbackNegative = "feedback_negative"
	IntentReset            = "reset"
	IntentUnknown          = "unknown"
)

const (
	matchConfidence   = 0.6
	unknownConfidence = 0.1
)

type intentRule struct {
	intent   string
	keywords []string
}

// IntentClassifier does lowercase substring matching against per-intent
// keyword sets in registration order; the first intent with any hit wins.
// A placeholder for a real NLU component: deterministic, always answers,
// never fails.
type IntentClassifier struct {
	rules []intentRule
}

// NewIntentClassifier returns a classifier with the default rule set.
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{
		rules: []intentRule{
			{IntentRequestOutfit, []string{"outfit", "what to wear", "what should i wear", "look for today", "dress me"}},
			{IntentAddGarment, []string{"add", "upload", "new garment", "more clothes"}},
			{IntentSetStyle, []string{"style", "preference", "taste"}},
			{IntentFeedbackNegative, []string{"don't like", "dont like", "hate", "awful", "👎"}},
			{IntentFeedbackPositive, []string{"like", "love", "great", "nice", "👍", "🔥"}},
			{IntentReset, []string{"reset", "start over", "clear everything"}},
		},
	}
}

// Classify returns the first matching intent with its confidence. Text with
// no configured keyword yields IntentUnknown at low confidence.
func (c *IntentClassifier) Classify(text string) (string, float64) {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.intent, matchConfidence
			}
		}
	}
	return IntentUnknown, unknownConfidence
}
