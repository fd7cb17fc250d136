package evaluator

// Personality is the interviewer persona. It only changes feedback phrasing.
type Personality string

const (
	PersonalityNeutral  Personality = "Neutral"
	PersonalityFriendly Personality = "Friendly"
	PersonalityStrict   Personality = "Strict"
)

// Level is a three-step bucket used by the metrics breakdown.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Tone is the suggested coaching tone for the answer.
type Tone string

const (
	ToneSupportive Tone = "Supportive"
	ToneDirect     Tone = "Direct"
)

// Category names a red-flag family.
type Category string

const (
	CategoryImmigrantIntent Category = "immigrant_intent"
	CategoryFinancialRisk   Category = "financial_risk"
	CategoryWeakTies        Category = "weak_ties"
	CategoryVaguePurpose    Category = "vague_purpose"
)

// UserProfile is the part of a user's profile used for question generation
type UserProfile struct {
	VisaType      string `json:"visa_type" bson:"visaType"`
	TargetCountry string `json:"target_country" bson:"targetCountry"`
}

// QuestionSpec is one generated question
type QuestionSpec struct {
	Text  string `json:"text" bson:"text"`
	Order int    `json:"order" bson:"order"`
}

// EvaluationInput carries an answer plus the session modifiers
type EvaluationInput struct {
	QuestionText string
	AnswerText   string
	StressMode   bool
	Personality  Personality
}

// Metrics is the structured breakdown attached to every evaluation
type Metrics struct {
	Clarity        Level      `json:"clarity" bson:"clarity"`
	Confidence     Level      `json:"confidence" bson:"confidence"`
	RiskLevel      Level      `json:"risk_level" bson:"riskLevel"`
	RedFlags       []Category `json:"red_flags" bson:"redFlags"`
	RiskySentences []string   `json:"risky_sentences" bson:"riskySentences"`
	WordCount      int        `json:"word_count" bson:"wordCount"`
	Tone           Tone       `json:"tone" bson:"tone"`
}

// EvaluationResult is what Evaluate returns. FollowUp is nil when no probe is needed.
type EvaluationResult struct {
	Score    int     `json:"score" bson:"score"`
	Feedback string  `json:"feedback" bson:"feedback"`
	FollowUp *string `json:"follow_up" bson:"followUp"`
	Metrics  Metrics `json:"metrics" bson:"metrics"`
}

// SessionSummary is the aggregate view of a finished session
type SessionSummary struct {
	Score int `json:"score"`
}

// AnswerRewrite pairs a weak answer with a stronger version of it
type AnswerRewrite struct {
	Original string `json:"original" bson:"original"`
	Improved string `json:"improved" bson:"improved"`
}

// ImprovementPlan is the coaching summary for a completed session
type ImprovementPlan struct {
	TopWeaknesses   []string        `json:"top_weaknesses" bson:"topWeaknesses"`
	ImprovedAnswers []AnswerRewrite `json:"improved_answers" bson:"improvedAnswers"`
	PracticeFocus   string          `json:"practice_focus" bson:"practiceFocus"`
}

// ParsePersonality maps a request value onto a known persona, falling back to Neutral.
func ParsePersonality(s string) Personality {
	switch Personality(s) {
	case PersonalityFriendly, PersonalityStrict:
		return Personality(s)
	default:
		return PersonalityNeutral
	}
}
