package evaluator

import (
	"fmt"
	"strings"
)

const (
	baseScore         = 50
	minScore          = 5
	maxScore          = 98
	flagPenalty       = 25
	stressPenalty     = 10
	hesitationPenalty = 15
	shortAnswerWords  = 10
	maxRiskySentences = 2
)

type triggerSet struct {
	category Category
	phrases  []string
}

// Scan order matters: it fixes the order of risky sentences and red flags.
var rejectionTriggers = []triggerSet{
	{CategoryImmigrantIntent, []string{"stay forever", "not coming back", "find a job there", "live with my boyfriend", "don't like my country"}},
	{CategoryFinancialRisk, []string{"don't know who pays", "no savings", "borrowed money", "work while studying", "unemployed"}},
	{CategoryWeakTies, []string{"no family here", "sold my house", "quit my job", "nothing to return to"}},
	{CategoryVaguePurpose, []string{"just because", "maybe travel", "don't know yet", "see what happens"}},
}

var hesitationMarkers = []string{" maybe", " i think", " um", " uh"}

const (
	feedbackStrong = "Excellent response! You were clear, concise, and demonstrated strong ties to your home country."
	feedbackGood   = "Good answer, but could be more persuasive. Try to provide concrete details about your return plans or funding."
	feedbackWeak   = "This answer might raise concerns. Avoid vague statements and ensure you clearly state your intent to return."

	followUpTies      = "I see. To be clear, do you have specific commitments or property in your home country that require your return after this trip?"
	followUpFunding   = "Thank you. Could you elaborate on how exactly you'll be accessing those funds while abroad? Documentation might be requested."
	followUpItinerary = "I'd like to understand your itinerary better. Could you describe your plans for the first 48 hours in the country?"
	followUpBenefit   = "That's helpful. Could you clarify one point: how does this visit specifically benefit your current situation at home?"
	followUpStress    = "Are you sure about these details? Officers verify everything, so answer again and be specific this time."
)

// detection is the intermediate red-flag scan result
type detection struct {
	flags          []Category
	riskySentences []string
}

func (d detection) distinct() []Category {
	seen := make(map[Category]struct{}, len(d.flags))
	out := make([]Category, 0, len(d.flags))
	for _, f := range d.flags {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func detectRedFlags(lower string) detection {
	var d detection
	for _, set := range rejectionTriggers {
		for _, phrase := range set.phrases {
			if strings.Contains(lower, phrase) {
				d.flags = append(d.flags, set.category)
				d.riskySentences = append(d.riskySentences, fmt.Sprintf("Detected potential %s: '%s'",
					strings.ReplaceAll(string(set.category), "_", " "), phrase))
			}
		}
	}
	return d
}

// confidenceScore can go below zero for short, hesitant answers
func confidenceScore(lower string, wordCount int) int {
	hesitations := 0
	for _, marker := range hesitationMarkers {
		hesitations += strings.Count(lower, marker)
	}
	confidence := max(0, 100-hesitationPenalty*hesitations)
	if wordCount < shortAnswerWords {
		confidence -= 20
	}
	return confidence
}

// floorDiv divides rounding toward negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// Evaluate scores an answer. It is a pure function of its input.
func Evaluate(in EvaluationInput) EvaluationResult {
	lower := strings.ToLower(in.AnswerText)
	wordCount := len(strings.Fields(lower))

	det := detectRedFlags(lower)
	categories := det.distinct()
	confidence := confidenceScore(lower, wordCount)

	base := baseScore
	if wordCount > 20 {
		base += 15
	}
	if wordCount > 40 {
		base += 15
	}
	penalty := flagPenalty * len(categories)
	if in.StressMode {
		penalty += stressPenalty
	}
	score := clamp(base+floorDiv(confidence, 5)-penalty, minScore, maxScore)

	risky := det.riskySentences
	if len(risky) > maxRiskySentences {
		risky = risky[:maxRiskySentences]
	}
	// Non-nil so it encodes as []
	risky = append([]string{}, risky...)

	return EvaluationResult{
		Score:    score,
		Feedback: buildFeedback(in.Personality, score, categories),
		FollowUp: selectFollowUp(score, categories, wordCount, in.StressMode),
		Metrics: Metrics{
			Clarity:        clarityLevel(wordCount),
			Confidence:     confidenceLevel(confidence),
			RiskLevel:      riskLevel(score, categories),
			RedFlags:       categories,
			RiskySentences: risky,
			WordCount:      wordCount,
			Tone:           toneFor(confidence),
		},
	}
}

func tonePrefix(p Personality, score int) string {
	switch p {
	case PersonalityFriendly:
		if score > 60 {
			return "I appreciate your response. "
		}
		return "I understand, but let's clarify. "
	case PersonalityStrict:
		if score > 80 {
			return "Duly noted. "
		}
		return "Be very precise here. "
	default:
		return ""
	}
}

func buildFeedback(p Personality, score int, categories []Category) string {
	var b strings.Builder
	b.WriteString(tonePrefix(p, score))
	switch {
	case score > 85:
		b.WriteString(feedbackStrong)
	case score > 65:
		b.WriteString(feedbackGood)
	default:
		b.WriteString(feedbackWeak)
	}
	if len(categories) > 0 {
		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = string(c)
		}
		fmt.Fprintf(&b, " Warning: Your response contains signals for %s.", strings.Join(names, ", "))
	}
	return b.String()
}

func hasCategory(categories []Category, c Category) bool {
	for _, got := range categories {
		if got == c {
			return true
		}
	}
	return false
}

func selectFollowUp(score int, categories []Category, wordCount int, stress bool) *string {
	var q string
	if score < 70 || len(categories) > 0 {
		switch {
		case hasCategory(categories, CategoryImmigrantIntent) || score < 50:
			q = followUpTies
		case hasCategory(categories, CategoryFinancialRisk):
			q = followUpFunding
		case hasCategory(categories, CategoryVaguePurpose) || wordCount < shortAnswerWords:
			q = followUpItinerary
		default:
			q = followUpBenefit
		}
	}
	if q == "" && stress {
		q = followUpStress
	}
	if q == "" {
		return nil
	}
	return &q
}

func clarityLevel(wordCount int) Level {
	switch {
	case wordCount > 20:
		return LevelHigh
	case wordCount > 10:
		return LevelMedium
	default:
		return LevelLow
	}
}

func confidenceLevel(confidence int) Level {
	switch {
	case confidence > 75:
		return LevelHigh
	case confidence > 45:
		return LevelMedium
	default:
		return LevelLow
	}
}

func riskLevel(score int, categories []Category) Level {
	switch {
	case len(categories) > 0 || score < 50:
		return LevelHigh
	case score < 75:
		return LevelMedium
	default:
		return LevelLow
	}
}

func toneFor(confidence int) Tone {
	if confidence < 50 {
		return ToneSupportive
	}
	return ToneDirect
}
