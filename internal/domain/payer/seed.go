package payer

import "github.com/google/uuid"

// SeedPayers returns the built-in payer directory loaded into an empty
// database at first startup.  Phone numbers are placeholders; deadline days
// reflect the common 180-day internal appeal window.
func SeedPayers() []*Payer {
	return []*Payer{
		{
			ID:                 uuid.New(),
			Name:               "Blue Cross Blue Shield",
			Aliases:            []string{"BCBS", "Blue Cross", "Blue Shield", "Anthem BCBS"},
			AppealsPhone:       "1-800-555-0100",
			AppealDeadlineDays: 180,
			RequiredDocs: []string{
				"Letter of medical necessity from treating physician",
				"Clinical notes from past 12 months",
				"Lab results and imaging reports",
				"Documentation of failed conservative treatments",
			},
			Tips: []string{
				"Reference BCBS clinical policy bulletins",
				"Include peer-reviewed literature",
				"Document functional impairment",
			},
		},
		{
			ID:                 uuid.New(),
			Name:               "Aetna",
			Aliases:            []string{"Aetna Health", "CVS Aetna"},
			AppealsPhone:       "1-800-555-0101",
			AppealDeadlineDays: 180,
			RequiredDocs: []string{
				"Physician letter of medical necessity",
				"Treatment history documentation",
				"Current clinical status",
			},
			Tips: []string{
				"Reference Aetna Clinical Policy Bulletins (CPBs)",
				"Include specific clinical criteria met",
			},
		},
		{
			ID:                 uuid.New(),
			Name:               "UnitedHealthcare",
			Aliases:            []string{"United", "UHC", "United Health"},
			AppealsPhone:       "1-800-555-0102",
			AppealDeadlineDays: 180,
			RequiredDocs: []string{
				"Letter of medical necessity",
				"Clinical documentation",
				"Evidence of medical appropriateness",
			},
			Tips: []string{
				"Reference UHC Medical Policies",
				"Include InterQual or MCG criteria if applicable",
			},
		},
		{
			ID:                 uuid.New(),
			Name:               "Cigna",
			Aliases:            []string{"Cigna Healthcare", "Cigna Health"},
			AppealsPhone:       "1-800-555-0103",
			AppealDeadlineDays: 180,
			RequiredDocs: []string{
				"Attending physician statement",
				"Medical records",
				"Test results",
			},
			Tips: []string{
				"Reference Cigna Coverage Policies",
				"Include specific diagnosis and treatment rationale",
			},
		},
		{
			ID:                 uuid.New(),
			Name:               "Humana",
			Aliases:            []string{"Humana Health", "Humana Insurance"},
			AppealsPhone:       "1-800-555-0104",
			AppealDeadlineDays: 180,
			RequiredDocs: []string{
				"Physician certification",
				"Clinical documentation",
				"Treatment plan",
			},
			Tips: []string{
				"Reference Humana Clinical Criteria",
				"Include detailed treatment justification",
			},
		},
		{
			ID:                 uuid.New(),
			Name:               "Kaiser Permanente",
			Aliases:            []string{"Kaiser", "KP"},
			AppealsPhone:       "1-800-555-0105",
			AppealDeadlineDays: 180,
			RequiredDocs: []string{
				"Provider recommendation",
				"Medical records",
				"Clinical justification",
			},
			Tips: []string{
				"Appeals handled internally",
				"Request expedited review for urgent cases",
			},
		},
	}
}
