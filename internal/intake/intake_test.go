package intake

import (
	"errors"
	"reflect"
	"testing"

	"guardquote/internal/domain/quote"
)

func TestBuild_Individual_Complete(t *testing.T) {
	req, err := Build(quote.TypeIndividual, Answers{
		KeyCoverageType:      "health",
		KeyCoverageLevel:     "premium",
		KeyEmploymentStatus:  "employed",
		KeyProvideHealthInfo: "yes",
		KeySmoker:            false,
		KeyConditions:        []any{"asthma", " "},
		KeyDependents:        float64(2),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if req.QuoteType != "individual" {
		t.Fatalf("expected individual, got %q", req.QuoteType)
	}
	if req.HealthInfo == nil || req.HealthInfo.Dependents != 2 {
		t.Fatalf("expected health info with 2 dependents, got %+v", req.HealthInfo)
	}
	if !reflect.DeepEqual(req.HealthInfo.PreExistingConditions, []string{"asthma"}) {
		t.Fatalf("unexpected conditions: %v", req.HealthInfo.PreExistingConditions)
	}

	d, err := quote.ValidateCreate(req)
	if err != nil {
		t.Fatalf("built payload should validate: %v", err)
	}
	if d.Individual.CoverageLevel != "premium" {
		t.Fatalf("unexpected draft: %+v", d.Individual)
	}
}

func TestBuild_Individual_HealthInfoOnlyWhenOptedIn(t *testing.T) {
	req, err := Build(quote.TypeIndividual, Answers{
		KeyCoverageType:      "life",
		KeyCoverageLevel:     "basic",
		KeyEmploymentStatus:  "retired",
		KeyProvideHealthInfo: "no",
		KeySmoker:            true,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if req.HealthInfo != nil {
		t.Fatalf("expected no health info, got %+v", req.HealthInfo)
	}
}

func TestBuild_Individual_MissingAnswers(t *testing.T) {
	_, err := Build(quote.TypeIndividual, Answers{KeyCoverageLevel: "basic", KeyEmploymentStatus: ""})

	var ie *quote.IncompleteIntakeError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IncompleteIntakeError, got %v", err)
	}
	if !errors.Is(err, quote.ErrIncompleteIntake) {
		t.Fatalf("expected errors.Is ErrIncompleteIntake")
	}
	want := []string{KeyCoverageType, KeyEmploymentStatus}
	if !reflect.DeepEqual(ie.Missing, want) {
		t.Fatalf("missing = %v, want %v", ie.Missing, want)
	}
}

func businessAnswers() Answers {
	return Answers{
		KeyCompanySize:     "11-50",
		KeyIndustry:        "Finance",
		KeyHasCompliance:   "yes",
		KeyComplianceTypes: []any{"PCI-DSS", "SOX"},
		KeyRemoteWorkforce: "no",
		KeyBudget:          "2500",
		KeyNumEmployees:    float64(40),
		KeyAnnualRevenue:   "1200000.50",
	}
}

func TestBuild_Business_Complete(t *testing.T) {
	req, err := Build(quote.TypeBusiness, businessAnswers())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if req.BusinessInfo == nil || req.BusinessInfo.HasRemoteWorkforce == nil || *req.BusinessInfo.HasRemoteWorkforce {
		t.Fatalf("expected remote workforce = false, got %+v", req.BusinessInfo)
	}
	d, err := quote.ValidateCreate(req)
	if err != nil {
		t.Fatalf("built payload should validate: %v", err)
	}
	if d.Business.Info.MonthlyBudget.String() != "2500" {
		t.Fatalf("unexpected budget: %s", d.Business.Info.MonthlyBudget)
	}
	if d.Business.NumEmployees == nil || *d.Business.NumEmployees != 40 {
		t.Fatalf("unexpected employees: %v", d.Business.NumEmployees)
	}
}

func TestBuild_Business_ComplianceNoDropsFrameworks(t *testing.T) {
	a := businessAnswers()
	a[KeyHasCompliance] = "no"
	a[KeyComplianceTypes] = []any{"HIPAA"}

	req, err := Build(quote.TypeBusiness, a)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(req.BusinessInfo.ComplianceTypes) != 0 {
		t.Fatalf("expected frameworks dropped, got %v", req.BusinessInfo.ComplianceTypes)
	}
}

func TestBuild_Business_ConditionalRequirements(t *testing.T) {
	a := businessAnswers()
	a[KeyIndustry] = "Other"
	a[KeyComplianceTypes] = []any{"Other"}
	delete(a, KeyBudget)

	_, err := Build(quote.TypeBusiness, a)
	var ie *quote.IncompleteIntakeError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IncompleteIntakeError, got %v", err)
	}
	want := []string{KeyIndustryOther, KeyComplianceOther, KeyBudget}
	if !reflect.DeepEqual(ie.Missing, want) {
		t.Fatalf("missing = %v, want %v", ie.Missing, want)
	}
}

func TestBuild_Business_ComplianceYesNeedsFramework(t *testing.T) {
	a := businessAnswers()
	a[KeyComplianceTypes] = []any{}

	_, err := Build(quote.TypeBusiness, a)
	var ie *quote.IncompleteIntakeError
	if !errors.As(err, &ie) || !reflect.DeepEqual(ie.Missing, []string{KeyComplianceTypes}) {
		t.Fatalf("expected compliance_types missing, got %v", err)
	}
}

func TestBuild_WrongShape(t *testing.T) {
	a := businessAnswers()
	a[KeyRemoteWorkforce] = "sometimes"

	_, err := Build(quote.TypeBusiness, a)
	if !errors.Is(err, quote.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestBuild_UnknownApplicant(t *testing.T) {
	_, err := Build(quote.Type("agency"), Answers{})
	if !errors.Is(err, quote.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
