package denial_extractor

import (
	"strings"

	"github.com/careloop/appealgen/internal/domain/denial"
)

// ---------------------------------------------------------------------------
// Classification rule table
// ---------------------------------------------------------------------------

// ClassifierRule associates a denial reason with its trigger phrases and a
// tie-break priority.  Higher priority wins a hit-count tie; more specific or
// actionable categories carry higher priority than the generic
// medical_necessity so classification stays deterministic.
type ClassifierRule struct {
	Reason   denial.ReasonType
	Priority int
	Phrases  []string
}

// DefaultClassifierRules returns the built-in rule table.  New categories are
// added by appending rows, not by branching logic.
func DefaultClassifierRules() []ClassifierRule {
	return []ClassifierRule{
		{
			Reason:   denial.ReasonStepTherapyRequired,
			Priority: 90,
			Phrases: []string{
				"step therapy",
				"step-therapy",
				"must first try",
				"fail first",
				"formulary alternative",
			},
		},
		{
			Reason:   denial.ReasonExperimentalTreatment,
			Priority: 85,
			Phrases: []string{
				"experimental",
				"investigational",
				"unproven",
				"not proven effective",
			},
		},
		{
			Reason:   denial.ReasonQuantityLimit,
			Priority: 80,
			Phrases: []string{
				"quantity limit",
				"quantity limits",
				"exceeds the quantity",
				"dispensing limit",
				"frequency limit",
			},
		},
		{
			Reason:   denial.ReasonPriorAuthRequired,
			Priority: 75,
			Phrases: []string{
				"prior authorization was not obtained",
				"without prior authorization",
				"prior authorization is required",
				"retroactive prior authorization",
				"preauthorization was not",
				"no prior authorization",
			},
		},
		{
			Reason:   denial.ReasonOutOfNetwork,
			Priority: 70,
			Phrases: []string{
				"out-of-network",
				"out of network",
				"non-participating provider",
				"not in network",
				"network exception",
			},
		},
		{
			Reason:   denial.ReasonMissingInformation,
			Priority: 65,
			Phrases: []string{
				"missing information",
				"incomplete documentation",
				"insufficient documentation",
				"additional information is required",
				"documentation was not received",
				"missing or insufficient",
			},
		},
		{
			Reason:   denial.ReasonNotCovered,
			Priority: 60,
			Phrases: []string{
				"not a covered",
				"not covered",
				"excluded from coverage",
				"benefit exclusion",
				"non-covered",
				"coverage determination",
			},
		},
		{
			Reason:   denial.ReasonMedicalNecessity,
			Priority: 50,
			Phrases: []string{
				"not medically necessary",
				"medically necessary",
				"medical necessity",
				"lack of medical necessity",
				"does not meet medical necessity",
			},
		},
	}
}

// ---------------------------------------------------------------------------
// Classifier
// ---------------------------------------------------------------------------

// Classifier maps raw denial text to a ReasonType by counting trigger-phrase
// hits per category.  It is a pure function over its inputs: identical text
// always yields the same category.
type Classifier struct {
	rules []ClassifierRule
}

// NewClassifier builds a classifier from the given rule table, falling back
// to the default table when rules is empty.
func NewClassifier(rules []ClassifierRule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultClassifierRules()
	}
	return &Classifier{rules: rules}
}

// Classify scans the full raw text (the trigger may appear outside the
// extracted reason phrase) plus the phrase itself, counts hits per category,
// and returns the best match.  The highest hit count wins; ties are broken by
// rule priority; zero hits across all categories resolves to ReasonOther.
func (c *Classifier) Classify(rawText, reasonPhrase string) denial.ReasonType {
	haystack := strings.ToLower(rawText)
	if reasonPhrase != "" && !strings.Contains(haystack, strings.ToLower(reasonPhrase)) {
		haystack += " " + strings.ToLower(reasonPhrase)
	}

	best := denial.ReasonOther
	bestHits := 0
	bestPriority := -1

	for _, rule := range c.rules {
		hits := 0
		for _, phrase := range rule.Phrases {
			hits += strings.Count(haystack, phrase)
		}
		if hits == 0 {
			continue
		}
		if hits > bestHits || (hits == bestHits && rule.Priority > bestPriority) {
			best = rule.Reason
			bestHits = hits
			bestPriority = rule.Priority
		}
	}

	return best
}

// TriggerPhrases returns every trigger phrase in the rule table, used by the
// pattern extractor to locate the denial-reason span.
func (c *Classifier) TriggerPhrases() []string {
	var out []string
	for _, rule := range c.rules {
		out = append(out, rule.Phrases...)
	}
	return out
}
