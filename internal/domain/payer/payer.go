// Package payer implements the payer reference-data bounded context: the
// insurance companies the system knows about, their appeal contact details,
// alias-aware name matching, and per-payer documentation requirements.
package payer

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Payer is reference data describing an insurance company or plan
// administrator, including the documentation it expects with a medical
// necessity appeal.
type Payer struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Aliases            []string  `json:"aliases,omitempty"`
	AppealsPhone       string    `json:"appeals_phone,omitempty"`
	AppealDeadlineDays int       `json:"appeal_deadline_days"`

	// RequiredDocs is the ordered payer-specific documentation checklist for
	// medical necessity appeals.
	RequiredDocs []string `json:"required_docs"`

	// Tips are free-text pointers for appeal authors (policy bulletin names,
	// escalation hints).  Informational only.
	Tips []string `json:"tips,omitempty"`

	TotalAppeals      int `json:"total_appeals"`
	SuccessfulAppeals int `json:"successful_appeals"`
}

// MatchesName reports whether the supplied name refers to this payer, either
// by canonical name or by a known alias.  Matching is case-insensitive and
// tolerant of partial names ("Blue Cross" matches "Blue Cross Blue Shield").
func (p *Payer) MatchesName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	canonical := strings.ToLower(p.Name)
	if strings.Contains(canonical, name) || strings.Contains(name, canonical) {
		return true
	}
	for _, alias := range p.Aliases {
		a := strings.ToLower(alias)
		if a == name || strings.Contains(name, a) {
			return true
		}
	}
	return false
}

// Repository defines the persistence contract for payer reference data.
type Repository interface {
	// GetByName finds a payer by canonical name or alias.
	GetByName(ctx context.Context, name string) (*Payer, error)
	ListAll(ctx context.Context) ([]*Payer, error)
	// Seed inserts the built-in payer directory if the table is empty.
	Seed(ctx context.Context, payers []*Payer) error
	// IncrementAppealCount bumps the appeal statistics for a payer.
	IncrementAppealCount(ctx context.Context, id uuid.UUID, successful bool) error
}
