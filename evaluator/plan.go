package evaluator

const (
	planPassingScore = 70

	weaknessFoundationalTrust = "Foundational trust: your answers did not consistently establish strong ties to your home country or a clear, verifiable purpose for travel."
	weaknessNone              = "No major weaknesses detected. Keep rehearsing to stay consistent under pressure."
	practiceFocus             = "Practice concise two-to-three sentence answers that state your purpose, your funding, and your reason to return home."
)

// improvedAnswerExamples are static rewrites until per-answer analysis exists
var improvedAnswerExamples = []AnswerRewrite{
	{
		Original: "I just want to see what happens there, maybe travel around.",
		Improved: "I am attending a two-week conference in Boston, followed by three days visiting the university campus before returning to my job on the 20th.",
	},
	{
		Original: "My uncle will pay, I don't know his income exactly.",
		Improved: "My uncle, a civil engineer earning about $60,000 a year, is sponsoring my trip. I have his bank statements and sponsorship letter with me.",
	},
}

// GenerateImprovementPlan builds the coaching summary for a session's aggregate score.
func GenerateImprovementPlan(session SessionSummary) ImprovementPlan {
	weaknesses := []string{weaknessNone}
	if session.Score < planPassingScore {
		weaknesses = []string{weaknessFoundationalTrust}
	}

	examples := make([]AnswerRewrite, len(improvedAnswerExamples))
	copy(examples, improvedAnswerExamples)

	return ImprovementPlan{
		TopWeaknesses:   weaknesses,
		ImprovedAnswers: examples,
		PracticeFocus:   practiceFocus,
	}
}
