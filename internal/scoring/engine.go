// Package scoring computes the interest score for a session turn. The engine
// is a pure function of the message, the classification and prior session
// state; the caller applies the monotonic max against the stored score.
package scoring

import (
	"math"
	"strings"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

// intentBonus is the fixed per-bucket increment before confidence scaling.
var intentBonus = map[chat.Intent]float64{
	chat.IntentConsultation:  30,
	chat.IntentPricing:       25,
	chat.IntentWebDesign:     20,
	chat.IntentSEO:           20,
	chat.IntentAIIntegration: 20,
	chat.IntentSupport:       5,
	chat.IntentGeneral:       5,
}

// keywordBoost lists raw-text signals layered on top of the classifier
// bonuses. The overlap with the intent buckets is intentional: double
// counting is accepted in favor of recall, and the final clamp bounds it.
var keywordBoost = []struct {
	points float64
	words  []string
}{
	{25, []string{"quote", "proposal"}},
	{20, []string{"urgent", "asap"}},
	{15, []string{"interested", "need"}},
}

// confidenceFloor keeps partial credit for low-confidence classifications:
// the intent increment is scaled by min(confidence+0.3, 1).
const confidenceFloor = 0.3

// Score computes the turn's interest score in [0,100]. turnsBefore is the
// conversation length prior to this message.
func Score(message string, cls chat.Classification, priorScore int, turnsBefore int) int {
	computed := float64(priorScore)

	scale := cls.Confidence + confidenceFloor
	if scale > 1 {
		scale = 1
	}
	computed += intentBonus[cls.Intent] * scale

	switch cls.Sentiment {
	case chat.SentimentPositive:
		computed += 10
	case chat.SentimentNegative:
		computed -= 5
	}

	if cls.Entity(chat.EntityBudget) != "" {
		computed += 20
	}
	if cls.Entity(chat.EntityTimeline) != "" {
		computed += 15
	}
	if cls.Entity(chat.EntityCompany) != "" {
		computed += 10
	}

	// Two separate engagement thresholds; both can apply.
	if turnsBefore > 5 {
		computed += 10
	}
	if turnsBefore > 10 {
		computed += 10
	}

	lower := strings.ToLower(message)
	for _, boost := range keywordBoost {
		for _, w := range boost.words {
			if strings.Contains(lower, w) {
				computed += boost.points
				break
			}
		}
	}

	if computed > 100 {
		computed = 100
	}
	if computed < 0 {
		computed = 0
	}
	return int(math.Round(computed))
}
