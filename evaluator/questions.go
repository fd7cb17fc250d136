package evaluator

import (
	"fmt"
	"strings"
)

const (
	defaultCountry  = "USA"
	defaultVisaType = "General"
	maxQuestions    = 5
)

var (
	studentQuestions = []string{
		"Why did you choose this specific university and program?",
		"How does this degree fit into your long-term career plans in your home country?",
		"If you are offered a job in the US after graduation, what would you do?",
		"How will you cover your living expenses in addition to tuition?",
	}
	workQuestions = []string{
		"What specific skills do you possess that make you suitable for this role?",
		"How did you find this employer, and have you met them in person?",
		"What is your expected salary, and how does it compare to your current income?",
		"Tell me about the project you will be working on.",
	}
	touristQuestions = []string{
		"What is your itinerary for the first few days of your trip?",
		"Why are you choosing to travel at this specific time?",
		"Do you have any friends or family at your destination?",
	}
)

// Generator produces interview question sets
type Generator struct {
	src Source
}

// NewGenerator creates a generator. A nil source falls back to DefaultSource.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = DefaultSource()
	}
	return &Generator{src: src}
}

// GenerateQuestions samples a question set with the shared random source
func GenerateQuestions(profile UserProfile) []QuestionSpec {
	return NewGenerator(nil).GenerateQuestions(profile)
}

// QuestionPool returns every question that may be asked for the profile, in pool order
func QuestionPool(profile UserProfile) []string {
	country := strings.TrimSpace(profile.TargetCountry)
	if country == "" {
		country = defaultCountry
	}
	visaType := strings.TrimSpace(profile.VisaType)
	if visaType == "" {
		visaType = defaultVisaType
	}

	pool := []string{
		fmt.Sprintf("What is the primary purpose of your travel to %s?", country),
		"How long do you plan to stay in the country?",
		"Can you tell me about your current employment or studies?",
		"Who is funding your trip, and what is their source of income?",
		"What guarantees that you will return to your home country after your stay?",
	}

	// First match wins
	visaType = strings.ToLower(visaType)
	switch {
	case strings.Contains(visaType, "student") || strings.Contains(visaType, "f1"):
		pool = append(pool, studentQuestions...)
	case strings.Contains(visaType, "work") || strings.Contains(visaType, "h1"):
		pool = append(pool, workQuestions...)
	case strings.Contains(visaType, "tourist") || strings.Contains(visaType, "b1"):
		pool = append(pool, touristQuestions...)
	}
	return pool
}

// GenerateQuestions picks up to five distinct questions from the profile's pool
// and numbers them in output order starting at 1.
func (g *Generator) GenerateQuestions(profile UserProfile) []QuestionSpec {
	pool := QuestionPool(profile)
	n := min(maxQuestions, len(pool))

	perm := g.src.Perm(len(pool))
	questions := make([]QuestionSpec, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, QuestionSpec{Text: pool[perm[i]], Order: i + 1})
	}
	return questions
}
