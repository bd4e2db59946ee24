package payer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesName(t *testing.T) {
	p := &Payer{
		Name:    "Blue Cross Blue Shield",
		Aliases: []string{"BCBS", "Blue Cross", "Blue Shield", "Anthem BCBS"},
	}

	tests := []struct {
		name string
		want bool
	}{
		{"Blue Cross Blue Shield", true},
		{"blue cross blue shield", true},
		{"Blue Cross", true},
		{"BCBS", true},
		{"bcbs", true},
		{"Anthem BCBS of Ohio", true},
		{"Aetna", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.MatchesName(tt.name), "input %q", tt.name)
	}
}

func TestSeedPayers(t *testing.T) {
	payers := SeedPayers()
	require.Len(t, payers, 6)

	names := make(map[string]bool, len(payers))
	for _, p := range payers {
		names[p.Name] = true
		assert.NotEqual(t, [16]byte{}, [16]byte(p.ID), "payer %s has zero id", p.Name)
		assert.NotEmpty(t, p.RequiredDocs, "payer %s has no required docs", p.Name)
		assert.Equal(t, 180, p.AppealDeadlineDays)
	}
	for _, want := range []string{
		"Blue Cross Blue Shield", "Aetna", "UnitedHealthcare",
		"Cigna", "Humana", "Kaiser Permanente",
	} {
		assert.True(t, names[want], "missing seed payer %s", want)
	}
}

func TestSeedPayersFreshIDs(t *testing.T) {
	a := SeedPayers()
	b := SeedPayers()
	assert.NotEqual(t, a[0].ID, b[0].ID)
}
