package appeal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/domain/payer"
)

func TestResolveLayersPayerBaseAndReason(t *testing.T) {
	r := NewRequirementsResolver(nil)

	docs := r.Resolve("Aetna", denial.ReasonMedicalNecessity)
	require.NotEmpty(t, docs)

	// Payer-specific entries come first, then the base documents, then the
	// reason table.
	var aetna *payer.Payer
	for _, p := range payer.SeedPayers() {
		if p.Name == "Aetna" {
			aetna = p
		}
	}
	require.NotNil(t, aetna)
	assert.Equal(t, aetna.RequiredDocs[0], docs[0])
	assert.Contains(t, docs, "Copy of denial letter")
	assert.Contains(t, docs, "Physician letter of medical necessity")
}

func TestResolvePayerDocsOnlyForMedicalNecessity(t *testing.T) {
	r := NewRequirementsResolver(nil)

	docs := r.Resolve("Aetna", denial.ReasonQuantityLimit)
	assert.Equal(t, "Copy of denial letter", docs[0])
	assert.Contains(t, docs, "Physician justification for quantity")
}

func TestResolveMatchesPayerAliases(t *testing.T) {
	r := NewRequirementsResolver(nil)

	byName := r.Resolve("UnitedHealthcare", denial.ReasonMedicalNecessity)
	byAlias := r.Resolve("UHC", denial.ReasonMedicalNecessity)
	assert.Equal(t, byName, byAlias)
}

func TestResolveUnknownPayerFallsThrough(t *testing.T) {
	r := NewRequirementsResolver(nil)

	docs := r.Resolve("Unknown Mutual of Nowhere", denial.ReasonMedicalNecessity)
	assert.Equal(t, "Copy of denial letter", docs[0])
	assert.Contains(t, docs, "Physician letter of medical necessity")
}

func TestResolveFallbackForOther(t *testing.T) {
	r := NewRequirementsResolver(nil)

	docs := r.Resolve("", denial.ReasonOther)
	assert.Contains(t, docs, "Copy of denial letter")
	assert.Contains(t, docs, "Supporting clinical documentation")
	assert.Contains(t, docs, "Physician statement")
}

func TestResolveDeduplicatesCaseInsensitively(t *testing.T) {
	custom := []*payer.Payer{{
		Name:         "Acme Health Plan",
		RequiredDocs: []string{"Copy of Denial Letter", "Operative report"},
	}}
	r := NewRequirementsResolver(custom)

	docs := r.Resolve("Acme Health Plan", denial.ReasonMedicalNecessity)

	count := 0
	for _, d := range docs {
		if strings.EqualFold(d, "copy of denial letter") {
			count++
		}
	}
	assert.Equal(t, 1, count)
	// The payer's casing wins because it was added first.
	assert.Equal(t, "Copy of Denial Letter", docs[0])
	assert.Contains(t, docs, "Operative report")
}

func TestResolveNeverEmpty(t *testing.T) {
	r := NewRequirementsResolver([]*payer.Payer{})

	for _, reason := range denial.AllReasons {
		assert.NotEmpty(t, r.Resolve("", reason), "reason %s", reason)
		assert.NotEmpty(t, r.Resolve("Nobody Insurance", reason), "reason %s", reason)
	}
	assert.NotEmpty(t, r.Resolve("", denial.ReasonType("unmapped")))
}
