// Package denial implements the denial bounded context: the structured record
// extracted from a payer denial letter, the closed set of denial reason
// categories, the optional patient context supplied by callers, and the
// appeal result produced by the pipeline.  All business rules that concern
// denials live here; infrastructure concerns (persistence, messaging) are
// handled by separate repository and adapter layers.
package denial

// ReasonType is the closed enumeration of denial reason categories.  The set
// is exhaustive and fixed; classification always resolves to exactly one
// member, with ReasonOther as the catch-all when no category matches.
type ReasonType string

const (
	ReasonMedicalNecessity      ReasonType = "medical_necessity"
	ReasonNotCovered            ReasonType = "not_covered"
	ReasonOutOfNetwork          ReasonType = "out_of_network"
	ReasonMissingInformation    ReasonType = "missing_information"
	ReasonExperimentalTreatment ReasonType = "experimental_treatment"
	ReasonStepTherapyRequired   ReasonType = "step_therapy_required"
	ReasonQuantityLimit         ReasonType = "quantity_limit"
	ReasonPriorAuthRequired     ReasonType = "prior_auth_required"
	ReasonOther                 ReasonType = "other"
)

// AllReasons lists every member of the enumeration in declaration order.
var AllReasons = []ReasonType{
	ReasonMedicalNecessity,
	ReasonNotCovered,
	ReasonOutOfNetwork,
	ReasonMissingInformation,
	ReasonExperimentalTreatment,
	ReasonStepTherapyRequired,
	ReasonQuantityLimit,
	ReasonPriorAuthRequired,
	ReasonOther,
}

// IsValid reports whether r is a member of the closed enumeration.
func (r ReasonType) IsValid() bool {
	switch r {
	case ReasonMedicalNecessity, ReasonNotCovered, ReasonOutOfNetwork,
		ReasonMissingInformation, ReasonExperimentalTreatment,
		ReasonStepTherapyRequired, ReasonQuantityLimit,
		ReasonPriorAuthRequired, ReasonOther:
		return true
	}
	return false
}

func (r ReasonType) String() string {
	return string(r)
}

// ParseReason converts a raw string into a ReasonType, falling back to
// ReasonOther for anything outside the enumeration.
func ParseReason(s string) ReasonType {
	r := ReasonType(s)
	if r.IsValid() {
		return r
	}
	return ReasonOther
}
