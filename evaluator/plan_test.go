package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateImprovementPlan(t *testing.T) {
	low := GenerateImprovementPlan(SessionSummary{Score: 40})
	require.Equal(t, []string{weaknessFoundationalTrust}, low.TopWeaknesses)
	require.Contains(t, low.TopWeaknesses[0], "Foundational trust")

	high := GenerateImprovementPlan(SessionSummary{Score: 90})
	require.Equal(t, []string{weaknessNone}, high.TopWeaknesses)

	edge := GenerateImprovementPlan(SessionSummary{Score: 70})
	require.Equal(t, []string{weaknessNone}, edge.TopWeaknesses)

	for _, p := range []ImprovementPlan{low, high} {
		require.Len(t, p.ImprovedAnswers, 2)
		require.Equal(t, practiceFocus, p.PracticeFocus)
	}

	// Callers may not mutate the shared examples
	low.ImprovedAnswers[0].Improved = "changed"
	require.NotEqual(t, "changed", GenerateImprovementPlan(SessionSummary{}).ImprovedAnswers[0].Improved)
}
