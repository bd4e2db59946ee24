package appeal

import (
	"text/template"

	"github.com/careloop/appealgen/internal/domain/denial"
)

// templateData is the flattened field set the letter templates render.  All
// fields are plain, pre-formatted strings so rendering is deterministic and
// never emits raw template syntax.
type templateData struct {
	CurrentDate          string
	PatientName          string
	MemberID             string
	ClaimNumber          string
	PayerName            string
	DenialDate           string
	ReasonText           string
	ProcedureCode        string
	ProcedureDescription string
	DiagnosisCodes       string
	TreatingPhysician    string
	ClinicalNotes        string
	ServiceDate          string

	// PriorTreatments and Enclosures are pre-rendered bulleted blocks.
	PriorTreatments string
	Enclosures      string
}

// letterTemplates maps every reason in the closed set to its letter
// template.  ReasonOther uses the generic template.  The map is built once
// at package load and read-only thereafter.
var letterTemplates = map[denial.ReasonType]*template.Template{
	denial.ReasonMedicalNecessity:      mustTemplate("medical_necessity", medicalNecessityTemplate),
	denial.ReasonStepTherapyRequired:   mustTemplate("step_therapy_required", stepTherapyTemplate),
	denial.ReasonNotCovered:            mustTemplate("not_covered", notCoveredTemplate),
	denial.ReasonOutOfNetwork:          mustTemplate("out_of_network", outOfNetworkTemplate),
	denial.ReasonMissingInformation:    mustTemplate("missing_information", missingInformationTemplate),
	denial.ReasonExperimentalTreatment: mustTemplate("experimental_treatment", experimentalTemplate),
	denial.ReasonQuantityLimit:         mustTemplate("quantity_limit", quantityLimitTemplate),
	denial.ReasonPriorAuthRequired:     mustTemplate("prior_auth_required", priorAuthTemplate),
	denial.ReasonOther:                 mustTemplate("default", defaultTemplate),
}

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

// templateFor returns the template for a reason, falling back to the generic
// template for anything outside the map.
func templateFor(reason denial.ReasonType) *template.Template {
	if t, ok := letterTemplates[reason]; ok {
		return t
	}
	return letterTemplates[denial.ReasonOther]
}

const medicalNecessityTemplate = `RE: Appeal for Denial of Prior Authorization - Medical Necessity
Date: {{.CurrentDate}}

Member: {{.PatientName}}
Member ID: {{.MemberID}}
Claim Number: {{.ClaimNumber}}
Date of Service: {{.ServiceDate}}
Procedure: {{.ProcedureCode}} - {{.ProcedureDescription}}
Diagnosis: {{.DiagnosisCodes}}

Dear {{.PayerName}} Appeals Department,

I am writing to formally appeal the denial of prior authorization for {{.ProcedureDescription}} for the above-referenced patient. The denial letter dated {{.DenialDate}} indicates the procedure was denied due to lack of demonstrated medical necessity. We respectfully disagree with this determination and request an expedited review.

CLINICAL SUMMARY:

{{.PatientName}} presents with {{.DiagnosisCodes}}, requiring {{.ProcedureDescription}}. The clinical evidence supporting the medical necessity of this intervention includes:

{{.ClinicalNotes}}

PRIOR TREATMENT HISTORY:

The patient has undergone the following conservative treatments:
{{.PriorTreatments}}

Despite these interventions, the patient continues to experience significant symptoms that substantially impair daily functioning and quality of life.

MEDICAL NECESSITY JUSTIFICATION:

The requested procedure is medically necessary for the following reasons:

1. Conservative treatment options have been exhausted or are contraindicated
2. The patient meets established clinical criteria for this intervention
3. Continued delay in treatment poses significant risk to the patient's health outcomes
4. The procedure represents the standard of care for this clinical presentation

SUPPORTING CLINICAL GUIDELINES:

This treatment recommendation aligns with current clinical practice guidelines and peer-reviewed medical literature. The requested intervention is recognized as appropriate and effective for patients meeting these clinical criteria.

REQUEST FOR ACTION:

Based on the clinical evidence presented, we request that {{.PayerName}} reverse the denial and authorize {{.ProcedureDescription}} for {{.PatientName}}. Given the patient's clinical status and the potential for deterioration without treatment, we request expedited review within 72 hours per applicable regulations.

Please contact our office if additional clinical documentation is required to support this appeal.

Respectfully submitted,

{{.TreatingPhysician}}

Enclosures:
{{.Enclosures}}
`

const stepTherapyTemplate = `RE: Appeal for Step Therapy Exception Request
Date: {{.CurrentDate}}

Member: {{.PatientName}}
Member ID: {{.MemberID}}
Claim Number: {{.ClaimNumber}}
Procedure/Medication: {{.ProcedureCode}} - {{.ProcedureDescription}}
Diagnosis: {{.DiagnosisCodes}}

Dear {{.PayerName}} Appeals Department,

I am writing to request a step therapy exception for {{.ProcedureDescription}} for the above-referenced patient. The denial dated {{.DenialDate}} requires completion of step therapy protocols before authorization. We request an exception based on the clinical documentation provided below.

STEP THERAPY EXCEPTION CRITERIA MET:

Under applicable state and federal regulations, step therapy exceptions are warranted when:
- The required medication/treatment has been ineffective for the patient
- The required medication/treatment caused adverse reactions
- The required medication/treatment is contraindicated
- The patient is stable on the requested medication/treatment

PRIOR TREATMENTS ATTEMPTED:

The patient has previously tried and failed the following therapies:
{{.PriorTreatments}}

CLINICAL DOCUMENTATION OF TREATMENT FAILURES:

{{.ClinicalNotes}}

RATIONALE FOR REQUESTED TREATMENT:

Based on the patient's treatment history and clinical presentation, {{.ProcedureDescription}} is the most appropriate next step in their care. Requiring additional step therapy would:

1. Delay necessary treatment without clinical benefit
2. Expose the patient to medications/treatments already proven ineffective
3. Risk adverse outcomes from known contraindications
4. Not align with current clinical practice guidelines

REQUEST:

We respectfully request that {{.PayerName}} grant a step therapy exception and authorize {{.ProcedureDescription}} for {{.PatientName}}. The clinical documentation demonstrates that step therapy requirements have been satisfied or that an exception is medically appropriate.

Sincerely,

{{.TreatingPhysician}}

Enclosures:
{{.Enclosures}}
`

const notCoveredTemplate = `RE: Appeal for Coverage Determination - Benefit Coverage Dispute
Date: {{.CurrentDate}}

Member: {{.PatientName}}
Member ID: {{.MemberID}}
Claim Number: {{.ClaimNumber}}
Procedure: {{.ProcedureCode}} - {{.ProcedureDescription}}
Diagnosis: {{.DiagnosisCodes}}

Dear {{.PayerName}} Appeals Department,

I am writing to appeal the denial of coverage for {{.ProcedureDescription}}, which was denied on {{.DenialDate}} as "not a covered benefit." We believe this determination is incorrect and request a review of coverage under the patient's plan.

COVERAGE ANALYSIS:

Based on our review of the member's Summary of Benefits and Coverage (SBC) and Evidence of Coverage (EOC), we believe {{.ProcedureDescription}} should be covered under the applicable benefit category.

CLINICAL NECESSITY:

Even if {{.PayerName}} considers this procedure to fall outside standard coverage, we submit that coverage is required because:

1. The procedure is medically necessary for the treatment of {{.DiagnosisCodes}}
2. Denial of coverage would result in adverse health outcomes
3. The service falls within a covered benefit category when properly classified
4. Applicable state/federal mandates may require coverage

SUPPORTING DOCUMENTATION:

{{.ClinicalNotes}}

REQUEST:

We request that {{.PayerName}}:
1. Review the coverage determination under the correct benefit category
2. Provide specific plan language supporting the denial if coverage is not available
3. Authorize the requested procedure if coverage is confirmed

Please respond within the timeframes required by applicable regulations.

Sincerely,

{{.TreatingPhysician}}

Enclosures:
{{.Enclosures}}
`

const outOfNetworkTemplate = `RE: Appeal for Out-of-Network Exception/Gap Exception Request
Date: {{.CurrentDate}}

Member: {{.PatientName}}
Member ID: {{.MemberID}}
Claim Number: {{.ClaimNumber}}
Procedure: {{.ProcedureCode}} - {{.ProcedureDescription}}
Provider: {{.TreatingPhysician}}
Diagnosis: {{.DiagnosisCodes}}

Dear {{.PayerName}} Appeals Department,

I am writing to request an out-of-network exception for services provided by {{.TreatingPhysician}} for {{.ProcedureDescription}}. The claim was denied on {{.DenialDate}} due to out-of-network status. We request in-network benefits be applied based on the following circumstances.

GROUNDS FOR NETWORK EXCEPTION:

1. NO IN-NETWORK PROVIDER AVAILABLE

After reasonable effort, the member was unable to locate an in-network provider who offers the specific service required ({{.ProcedureDescription}}), is accepting new patients, can provide services within a reasonable timeframe, and is located within a reasonable geographic distance.

2. CONTINUITY OF CARE

The member has an established relationship with {{.TreatingPhysician}} for the treatment of {{.DiagnosisCodes}}. Disrupting this care relationship would compromise treatment outcomes, require unnecessary duplication of services, and delay time-sensitive treatment.

3. SPECIALIZED EXPERTISE REQUIRED

{{.ProcedureDescription}} requires specialized expertise that is not available within the network.

CLINICAL DOCUMENTATION:

{{.ClinicalNotes}}

REQUEST:

We request that {{.PayerName}} authorize {{.ProcedureDescription}} with in-network benefit levels due to the documented network inadequacy or continuity of care requirements. If this request cannot be approved, please provide the names of in-network providers offering this service, confirmation that they are accepting new patients, and a timeline for patient access to in-network care.

Sincerely,

{{.TreatingPhysician}}

Enclosures:
{{.Enclosures}}
`

const missingInformationTemplate = `RE: Appeal with Additional Documentation - Previously Denied for Missing Information
Date: {{.CurrentDate}}

Member: {{.PatientName}}
Member ID: {{.MemberID}}
Claim Number: {{.ClaimNumber}}
Procedure: {{.ProcedureCode}} - {{.ProcedureDescription}}
Diagnosis: {{.DiagnosisCodes}}

Dear {{.PayerName}} Appeals Department,

I am resubmitting the prior authorization request for {{.ProcedureDescription}}, which was denied on {{.DenialDate}} due to missing or insufficient documentation. This appeal includes all requested documentation to support authorization.

ORIGINAL DENIAL REASON:

"{{.ReasonText}}"

DOCUMENTATION NOW PROVIDED:

In response to the information request, we are submitting the following:
{{.PriorTreatments}}

ADDITIONAL CLINICAL INFORMATION:

{{.ClinicalNotes}}

SUMMARY OF MEDICAL NECESSITY:

{{.PatientName}} requires {{.ProcedureDescription}} for the treatment of {{.DiagnosisCodes}}. The enclosed documentation demonstrates:

1. Clinical diagnosis and severity
2. Treatment history and prior interventions
3. Medical necessity for the requested procedure
4. Expected outcomes and treatment plan

REQUEST:

With the complete documentation now provided, we request that {{.PayerName}} approve the prior authorization for {{.ProcedureDescription}}. All previously identified documentation gaps have been addressed in this submission.

Please contact our office if any additional information is required.

Sincerely,

{{.TreatingPhysician}}

Enclosures:
{{.Enclosures}}
`

const experimentalTemplate = `RE: Appeal for Coverage of Treatment Denied as Experimental/Investigational
Date: {{.CurrentDate}}

Member: {{.PatientName}}
Member ID: {{.MemberID}}
Claim Number: {{.ClaimNumber}}
Procedure/Treatment: {{.ProcedureCode}} - {{.ProcedureDescription}}
Diagnosis: {{.DiagnosisCodes}}

Dear {{.PayerName}} Appeals Department,

I am writing to appeal the denial of {{.ProcedureDescription}}, which was denied on {{.DenialDate}} as "experimental" or "investigational." We respectfully disagree with this characterization and provide evidence that this treatment is established, effective, and appropriate for {{.PatientName}}.

TREATMENT STATUS - NOT EXPERIMENTAL:

{{.ProcedureDescription}} should not be classified as experimental because:

1. The treatment carries applicable FDA approval, clearance, or established use
2. The treatment is supported by substantial clinical evidence, including peer-reviewed published studies, clinical practice guidelines, and professional society recommendations
3. {{.ProcedureDescription}} is recognized as standard of care for {{.DiagnosisCodes}}
4. This treatment is routinely covered by other major insurers and is performed at leading medical institutions nationwide

CLINICAL NECESSITY FOR THIS PATIENT:

{{.ClinicalNotes}}

PRIOR TREATMENTS:
{{.PriorTreatments}}

REQUEST:

Based on the substantial evidence that {{.ProcedureDescription}} is established, effective, and medically necessary, we request that {{.PayerName}}:

1. Reclassify this treatment as non-experimental
2. Authorize the requested procedure for {{.PatientName}}
3. If denied, provide the specific clinical criteria used in the determination

Sincerely,

{{.TreatingPhysician}}

Enclosures:
{{.Enclosures}}
`

const quantityLimitTemplate = `RE: Appeal for Quantity Limit Exception
Date: {{.CurrentDate}}

Member: {{.PatientName}}
Member ID: {{.MemberID}}
Claim Number: {{.ClaimNumber}}
Medication/Supply: {{.ProcedureCode}} - {{.ProcedureDescription}}
Diagnosis: {{.DiagnosisCodes}}

Dear {{.PayerName}} Appeals Department,

I am writing to request a quantity limit exception for {{.ProcedureDescription}} for the above-referenced patient. The prescription/order was denied on {{.DenialDate}} due to quantity limits. We request an exception based on clinical necessity.

CLINICAL JUSTIFICATION FOR INCREASED QUANTITY:

{{.PatientName}} requires a quantity exceeding the standard limit due to:

{{.ClinicalNotes}}

RELEVANT FACTORS:

1. Disease severity: {{.DiagnosisCodes}}
2. Treatment protocol requirements
3. Patient-specific factors affecting dosing/usage
4. Prior treatment at standard quantities was inadequate

SUPPORTING DOCUMENTATION:
{{.PriorTreatments}}

REQUEST:

We request that {{.PayerName}} approve a quantity limit exception for {{.ProcedureDescription}} for {{.PatientName}}. This quantity is medically necessary for adequate treatment of the patient's condition, consistent with FDA-approved dosing and manufacturer recommendations.

Sincerely,

{{.TreatingPhysician}}

Enclosures:
{{.Enclosures}}
`

const priorAuthTemplate = `RE: Retroactive Prior Authorization Request / Appeal for Timely Filing
Date: {{.CurrentDate}}

Member: {{.PatientName}}
Member ID: {{.MemberID}}
Claim Number: {{.ClaimNumber}}
Date of Service: {{.ServiceDate}}
Procedure: {{.ProcedureCode}} - {{.ProcedureDescription}}
Diagnosis: {{.DiagnosisCodes}}

Dear {{.PayerName}} Appeals Department,

I am writing to request retroactive prior authorization for {{.ProcedureDescription}} provided on {{.ServiceDate}}. The claim was denied on {{.DenialDate}} because prior authorization was not obtained before the service. We request approval based on the circumstances below.

REASON PRIOR AUTHORIZATION WAS NOT OBTAINED:

The service was rendered under circumstances that prevented prospective authorization, such as an emergency or urgent medical situation, rendering during an inpatient stay, or an authorization request that was not processed timely.

DOCUMENTATION OF MEDICAL NECESSITY:

{{.ClinicalNotes}}

The service was medically necessary at the time provided because:
{{.PriorTreatments}}

REQUEST:

We request that {{.PayerName}}:
1. Grant retroactive authorization for the service provided
2. Process the claim with appropriate benefits applied

The clinical documentation demonstrates the service was medically necessary and would have been authorized had the request been submitted prospectively.

Sincerely,

{{.TreatingPhysician}}

Enclosures:
{{.Enclosures}}
`

const defaultTemplate = `RE: Appeal for Prior Authorization Denial
Date: {{.CurrentDate}}

Member: {{.PatientName}}
Member ID: {{.MemberID}}
Claim Number: {{.ClaimNumber}}
Date of Service: {{.ServiceDate}}
Procedure: {{.ProcedureCode}} - {{.ProcedureDescription}}
Diagnosis: {{.DiagnosisCodes}}

Dear {{.PayerName}} Appeals Department,

I am writing to formally appeal the denial of prior authorization for {{.ProcedureDescription}}, denied on {{.DenialDate}}. The denial stated:

"{{.ReasonText}}"

We respectfully disagree with this determination and submit the following information in support of authorization.

PATIENT CLINICAL SUMMARY:

{{.ClinicalNotes}}

DIAGNOSIS AND TREATMENT HISTORY:

Primary Diagnosis: {{.DiagnosisCodes}}

Prior Treatments:
{{.PriorTreatments}}

MEDICAL NECESSITY JUSTIFICATION:

{{.ProcedureDescription}} is medically necessary for {{.PatientName}} based on:

1. Clinical presentation and diagnosis
2. Failure or contraindication of alternative treatments
3. Expected benefit from the requested intervention
4. Alignment with current clinical practice guidelines

SUPPORTING DOCUMENTATION:

The enclosed materials provide additional clinical support for this request.

REQUEST:

We request that {{.PayerName}} reverse the denial and authorize {{.ProcedureDescription}} for {{.PatientName}}. Please contact our office if additional information is needed to process this appeal.

Sincerely,

{{.TreatingPhysician}}

Enclosures:
{{.Enclosures}}
`
