// Package denial_extractor implements the rule-based denial analysis core:
// regex field extraction from raw denial text, keyword classification into
// the closed reason set, and the extraction-confidence heuristic.  Every
// operation in this package is a total, deterministic function: malformed
// input yields empty fields, never an error or panic.
package denial_extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/domain/payer"
)

// ---------------------------------------------------------------------------
// Field patterns
// ---------------------------------------------------------------------------

// datePattern matches the date forms accepted in denial letters.  The
// alternatives are ordered long-form month first so the longest form wins.
const datePattern = `((?:(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?\s+\d{1,2},?\s+\d{4})|(?:\d{1,2}[/-]\d{1,2}[/-]\d{4})|(?:\d{4}-\d{2}-\d{2}))`

// dateLayouts are tried in order when normalising a matched date substring.
// Substrings that parse with none of them are dropped, not surfaced.
var dateLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"1/2/2006",
	"1-2-2006",
	"2006-01-02",
}

var (
	// Identifier variants are tried in fixed priority order; the first
	// matching pattern wins so extraction is reproducible on identical input.
	claimPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)claim\s+number\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`),
		regexp.MustCompile(`(?i)claim\s*#\s*:?\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`),
		regexp.MustCompile(`(?i)claim\s+no\.?\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`),
	}

	memberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)member\s+id\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`),
		regexp.MustCompile(`(?i)member\s+(?:number|no\.?)\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`),
		regexp.MustCompile(`(?i)subscriber\s+id\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`),
	}

	// cptPattern matches 5-digit CPT-like tokens.
	cptPattern = regexp.MustCompile(`\b\d{5}\b`)

	// icdPattern matches ICD-10-like alphanumeric tokens (letter, two
	// digits/alphanumerics, optional dotted extension).  U is reserved.
	icdPattern = regexp.MustCompile(`\b[A-TV-Z]\d[0-9A-Z](?:\.[0-9A-Z]{1,4})?\b`)

	denialDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)denial\s+date\s*:?\s*` + datePattern),
		regexp.MustCompile(`(?i)date\s+of\s+denial\s*:?\s*` + datePattern),
		regexp.MustCompile(`(?i)denied\s+on\s+` + datePattern),
		regexp.MustCompile(`(?i)\bdated\s+` + datePattern),
	}

	deadlinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)appeal\s+deadline\s*:?\s*` + datePattern),
		regexp.MustCompile(`(?i)appeal\s+must\s+be\s+(?:filed|submitted|received)\s+(?:by|no\s+later\s+than)\s+` + datePattern),
		regexp.MustCompile(`(?i)file\s+an\s+appeal\s+(?:by|no\s+later\s+than)\s+` + datePattern),
		regexp.MustCompile(`(?i)deadline\s+(?:to\s+appeal\s+)?(?:is\s+)?:?\s*` + datePattern),
	}

	// payerSuffixPattern is the generic fallback when no known payer name or
	// alias appears in the text.
	payerSuffixPattern = regexp.MustCompile(`\b([A-Z][A-Za-z&]*(?:\s+[A-Z&][A-Za-z&]*)*\s+(?:Insurance(?:\s+Company)?|Health\s+Plan|Healthcare))\b`)

	sentencePattern = regexp.MustCompile(`[^.!?\n]+`)
)

// ---------------------------------------------------------------------------
// Extractor
// ---------------------------------------------------------------------------

// Extractor parses raw denial text into a structured Extraction.  It always
// succeeds: the absence of a match yields an empty field, never an error.
type Extractor interface {
	Extract(rawText string) *denial.Extraction
}

type patternExtractor struct {
	classifier *Classifier

	// knownPayers maps a compiled word-boundary pattern to the canonical
	// payer name it identifies.  Built once from the payer directory.
	knownPayers []payerMatcher

	triggers []string
}

type payerMatcher struct {
	re        *regexp.Regexp
	canonical string
	// length of the matched candidate; longer candidates are preferred so
	// "Blue Cross Blue Shield" beats "Blue Cross".
	length int
}

// NewExtractor builds an extractor that recognises the given payer directory
// and uses the classifier's trigger phrases to locate the denial-reason span.
// A nil classifier gets the default rule table.
func NewExtractor(classifier *Classifier, payers []*payer.Payer) Extractor {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	if payers == nil {
		payers = payer.SeedPayers()
	}

	var matchers []payerMatcher
	for _, p := range payers {
		candidates := append([]string{p.Name}, p.Aliases...)
		for _, c := range candidates {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			matchers = append(matchers, payerMatcher{
				re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(c) + `\b`),
				canonical: p.Name,
				length:    len(c),
			})
		}
	}

	triggers := classifier.TriggerPhrases()
	for i, t := range triggers {
		triggers[i] = strings.ToLower(t)
	}

	return &patternExtractor{
		classifier:  classifier,
		knownPayers: matchers,
		triggers:    triggers,
	}
}

// Extract applies the field rules in a fixed order and classifies the result.
func (e *patternExtractor) Extract(rawText string) *denial.Extraction {
	ex := &denial.Extraction{
		Reason:         denial.ReasonOther,
		ProcedureCodes: []string{},
		DiagnosisCodes: []string{},
		RawText:        rawText,
	}
	if strings.TrimSpace(rawText) == "" {
		return ex
	}

	ex.PayerName = e.extractPayer(rawText)
	ex.ClaimNumber = firstSubmatch(claimPatterns, rawText)
	ex.MemberID = firstSubmatch(memberPatterns, rawText)
	ex.ProcedureCodes = extractCodes(cptPattern, rawText)
	ex.DiagnosisCodes = extractDiagnosisCodes(rawText)
	ex.DenialDate = extractDate(denialDatePatterns, rawText)
	ex.AppealDeadline = extractDate(deadlinePatterns, rawText)
	ex.ReasonText = e.extractReasonPhrase(rawText)
	ex.Reason = e.classifier.Classify(rawText, ex.ReasonText)

	return ex
}

// extractPayer prefers the longest known payer name or alias present in the
// text, falling back to the generic company-suffix pattern.
func (e *patternExtractor) extractPayer(text string) string {
	best := ""
	bestLen := 0
	for _, m := range e.knownPayers {
		if m.length > bestLen && m.re.MatchString(text) {
			best = m.canonical
			bestLen = m.length
		}
	}
	if best != "" {
		return best
	}
	if sub := payerSuffixPattern.FindStringSubmatch(text); sub != nil {
		return strings.TrimSpace(sub[1])
	}
	return ""
}

// extractReasonPhrase returns the longest sentence containing any trigger
// phrase.  The raw phrase is retained even when classification cannot map it
// to a category.
func (e *patternExtractor) extractReasonPhrase(text string) string {
	best := ""
	for _, sentence := range sentencePattern.FindAllString(text, -1) {
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) <= len(best) {
			continue
		}
		lower := strings.ToLower(trimmed)
		for _, trigger := range e.triggers {
			if strings.Contains(lower, trigger) {
				best = trimmed
				break
			}
		}
	}
	return best
}

// firstSubmatch tries each pattern in priority order and returns the first
// capture group of the first pattern that matches.
func firstSubmatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if sub := re.FindStringSubmatch(text); sub != nil {
			return sub[1]
		}
	}
	return ""
}

// extractCodes collects all non-overlapping matches, deduplicated while
// preserving first-seen order.
func extractCodes(re *regexp.Regexp, text string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, m := range re.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// extractDiagnosisCodes keeps only ICD-shaped tokens that carry real
// diagnostic signal: plain three-character stems are accepted only when the
// text marks them as ICD codes, which filters incidental matches such as
// "B12" in prose.
func extractDiagnosisCodes(text string) []string {
	codes := extractCodes(icdPattern, text)
	if len(codes) == 0 {
		return codes
	}
	hasMarker := strings.Contains(strings.ToLower(text), "icd") ||
		strings.Contains(strings.ToLower(text), "diagnosis")
	out := []string{}
	for _, c := range codes {
		if strings.Contains(c, ".") || hasMarker {
			out = append(out, c)
		}
	}
	return out
}

// extractDate tries the context patterns in priority order and normalises the
// first parseable date.  Unparseable date-like substrings are dropped.
func extractDate(patterns []*regexp.Regexp, text string) *time.Time {
	for _, re := range patterns {
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		if t, ok := parseDate(sub[1]); ok {
			return &t
		}
	}
	return nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ".", ""))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
