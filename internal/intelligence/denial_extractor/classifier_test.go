package denial_extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careloop/appealgen/internal/domain/denial"
)

func TestClassifyPerCategory(t *testing.T) {
	c := NewClassifier(nil)
	tests := []struct {
		text string
		want denial.ReasonType
	}{
		{"the service is not medically necessary per our review", denial.ReasonMedicalNecessity},
		{"this procedure is not a covered benefit under your plan", denial.ReasonNotCovered},
		{"the provider is out-of-network for your plan", denial.ReasonOutOfNetwork},
		{"denied due to missing information in the submission", denial.ReasonMissingInformation},
		{"the treatment is considered experimental and investigational", denial.ReasonExperimentalTreatment},
		{"step therapy protocols must be completed before approval", denial.ReasonStepTherapyRequired},
		{"the request exceeds the quantity limit for this medication", denial.ReasonQuantityLimit},
		{"denied because prior authorization was not obtained", denial.ReasonPriorAuthRequired},
		{"we have completed our review of your correspondence", denial.ReasonOther},
		{"", denial.ReasonOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.text, ""), "text %q", tt.text)
	}
}

func TestClassifyHighestHitCountWins(t *testing.T) {
	c := NewClassifier(nil)
	// Two medical-necessity hits against one out-of-network hit.
	text := "not medically necessary; the medical necessity criteria were not met; provider is out of network"
	assert.Equal(t, denial.ReasonMedicalNecessity, c.Classify(text, ""))
}

func TestClassifyTieBreakPriority(t *testing.T) {
	c := NewClassifier(nil)
	// One hit each; step therapy outranks the generic medical necessity.
	text := "step therapy is required and the request lacks medical necessity"
	assert.Equal(t, denial.ReasonStepTherapyRequired, c.Classify(text, ""))
}

func TestClassifyUsesReasonPhrase(t *testing.T) {
	c := NewClassifier(nil)
	// The trigger appears only in the supplied phrase, not the text.
	got := c.Classify("see the attached explanation", "service deemed not medically necessary")
	assert.Equal(t, denial.ReasonMedicalNecessity, got)
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(nil)
	text := "experimental treatment denied; quantity limit also exceeded; experimental again"
	first := c.Classify(text, "")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(text, ""))
	}
}

func TestDefaultClassifierRulesCoverAllSpecificReasons(t *testing.T) {
	rules := DefaultClassifierRules()
	seen := make(map[denial.ReasonType]bool)
	for _, r := range rules {
		assert.NotEmpty(t, r.Phrases, "rule %s has no phrases", r.Reason)
		assert.False(t, seen[r.Reason], "duplicate rule for %s", r.Reason)
		seen[r.Reason] = true
	}
	// Every reason except the catch-all has a rule.
	assert.Len(t, rules, len(denial.AllReasons)-1)
	assert.False(t, seen[denial.ReasonOther])
}
