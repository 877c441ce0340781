package quote

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const maxDescriptionLen = 5000

// Number holds a numeric field as sent by the client. It accepts both JSON
// numbers and numeric strings; parsing happens during validation.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	*n = Number(raw)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

// BusinessInfoInput is the client-facing shape of BusinessInfo.
type BusinessInfoInput struct {
	CompanySize          string   `json:"company_size"`
	IndustryOther        string   `json:"industry_other"`
	HasCompliance        string   `json:"has_compliance"`
	ComplianceTypes      []string `json:"compliance_types"`
	ComplianceOther      string   `json:"compliance_other"`
	HasRemoteWorkforce   *bool    `json:"has_remote_workforce"`
	CurrentSolutions     string   `json:"current_solutions"`
	Budget               *Number  `json:"budget"`
	SecurityRequirements string   `json:"security_requirements"`
}

// CreateRequest is a quote creation payload. Ownership and status are not part
// of it; the service assigns both.
type CreateRequest struct {
	QuoteType   string  `json:"quote_type"`
	Description *string `json:"description"`

	CoverageType     *string     `json:"coverage_type"`
	CoverageLevel    *string     `json:"coverage_level"`
	EmploymentStatus *string     `json:"employment_status"`
	HealthInfo       *HealthInfo `json:"health_info"`

	Industry      *string            `json:"industry"`
	NumEmployees  *Number            `json:"num_employees"`
	AnnualRevenue *Number            `json:"annual_revenue"`
	BusinessInfo  *BusinessInfoInput `json:"business_info"`
}

// UpdateRequest is a partial update. Nil fields are left untouched.
type UpdateRequest struct {
	UserID    *string `json:"user_id"`
	QuoteType *string `json:"quote_type"`

	Status          *string `json:"status"`
	EstimatedAmount *Number `json:"estimated_amount"`
	Description     *string `json:"description"`

	CoverageType     *string     `json:"coverage_type"`
	CoverageLevel    *string     `json:"coverage_level"`
	EmploymentStatus *string     `json:"employment_status"`
	HealthInfo       *HealthInfo `json:"health_info"`

	Industry      *string            `json:"industry"`
	NumEmployees  *Number            `json:"num_employees"`
	AnnualRevenue *Number            `json:"annual_revenue"`
	BusinessInfo  *BusinessInfoInput `json:"business_info"`
}

// Draft is a validated creation payload.
type Draft struct {
	Type        Type
	Description *string
	Individual  *IndividualTrack
	Business    *BusinessTrack
}

// Patch is a validated partial update ready for a single conditional write.
type Patch struct {
	Status *Status

	SetEstimatedAmount bool
	EstimatedAmount    decimal.NullDecimal

	SetDescription bool
	Description    *string

	Individual *IndividualTrack
	Business   *BusinessTrack
}

func (p Patch) Empty() bool {
	return p.Status == nil && !p.SetEstimatedAmount && !p.SetDescription && p.Individual == nil && p.Business == nil
}

// Apply copies the patch onto q.
func (p Patch) Apply(q *Quote) {
	if p.Status != nil {
		q.Status = *p.Status
	}
	if p.SetEstimatedAmount {
		q.EstimatedAmount = p.EstimatedAmount
	}
	if p.SetDescription {
		q.Description = p.Description
	}
	if p.Individual != nil {
		q.Individual = p.Individual
	}
	if p.Business != nil {
		q.Business = p.Business
	}
}

// ValidateCreate checks a creation payload and returns the normalized draft.
// It never returns a partially valid draft.
func ValidateCreate(req CreateRequest) (Draft, error) {
	errs := FieldErrors{}

	t := Type(strings.ToLower(strings.TrimSpace(req.QuoteType)))
	if !t.Valid() {
		errs.Add("quote_type", "must be one of individual, business")
		return Draft{}, validationResult(errs)
	}

	d := Draft{Type: t, Description: normalizeDescription(req.Description, errs)}

	switch t {
	case TypeIndividual:
		rejectBusinessFields(req.Industry, req.NumEmployees, req.AnnualRevenue, req.BusinessInfo, errs)
		d.Individual = &IndividualTrack{
			CoverageType:     requiredEnum("coverage_type", req.CoverageType, CoverageTypes, errs),
			CoverageLevel:    requiredEnum("coverage_level", req.CoverageLevel, CoverageLevels, errs),
			EmploymentStatus: requiredEnum("employment_status", req.EmploymentStatus, EmploymentStatuses, errs),
			HealthInfo:       normalizeHealthInfo(req.HealthInfo, errs),
		}
	case TypeBusiness:
		rejectIndividualFields(req.CoverageType, req.CoverageLevel, req.EmploymentStatus, req.HealthInfo, errs)
		industry := requiredEnum("industry", req.Industry, Industries, errs)
		b := &BusinessTrack{
			Industry:      industry,
			NumEmployees:  parseCount("num_employees", req.NumEmployees, errs),
			AnnualRevenue: parseOptionalMoney("annual_revenue", req.AnnualRevenue, maxRevenueDigits, errs),
		}
		if req.BusinessInfo == nil {
			errs.Add("business_info", "is required")
		} else {
			b.Info = validateBusinessInfo(*req.BusinessInfo, industry, errs)
		}
		d.Business = b
	}

	if err := validationResult(errs); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// ValidateUpdate checks a partial update against the current record. Attempts
// to change ownership or type fail first, then the status transition, then
// field-level rules.
func ValidateUpdate(current Quote, req UpdateRequest) (Patch, error) {
	if req.UserID != nil && !strings.EqualFold(strings.TrimSpace(*req.UserID), current.UserID.String()) {
		return Patch{}, &ImmutableFieldError{Field: "user_id"}
	}
	if req.QuoteType != nil && Type(strings.ToLower(strings.TrimSpace(*req.QuoteType))) != current.Type {
		return Patch{}, &ImmutableFieldError{Field: "quote_type"}
	}

	errs := FieldErrors{}
	var p Patch

	reexpire := false
	if req.Status != nil {
		to := Status(strings.ToLower(strings.TrimSpace(*req.Status)))
		switch {
		case !to.Valid():
			errs.Add("status", "unknown status")
			return Patch{}, validationResult(errs)
		case to == StatusExpired && current.Status == StatusExpired:
			reexpire = true
		default:
			if err := CheckTransition(current.Status, to); err != nil {
				return Patch{}, err
			}
			p.Status = &to
			if !to.CarriesAmount() {
				p.SetEstimatedAmount = true
			}
		}
	}

	enteringQuoted := p.Status != nil && *p.Status == StatusQuoted
	switch {
	case req.EstimatedAmount != nil && !enteringQuoted:
		errs.Add("estimated_amount", "may only be set together with a transition to quoted")
	case req.EstimatedAmount == nil && enteringQuoted:
		errs.Add("estimated_amount", "is required when status becomes quoted")
	case enteringQuoted:
		amt, ok := parseMoney("estimated_amount", *req.EstimatedAmount, true, maxAmountDigits, errs)
		if ok {
			p.SetEstimatedAmount = true
			p.EstimatedAmount = decimal.NewNullDecimal(amt)
		}
	}

	edited := editedFields(req)
	if len(edited) > 0 && !current.Status.Editable() {
		for _, f := range edited {
			errs.Add(f, "quote is no longer editable in status "+string(current.Status))
		}
		return Patch{}, validationResult(errs)
	}

	if req.Description != nil {
		p.SetDescription = true
		p.Description = normalizeDescription(req.Description, errs)
	}

	switch current.Type {
	case TypeIndividual:
		rejectBusinessFields(req.Industry, req.NumEmployees, req.AnnualRevenue, req.BusinessInfo, errs)
		if req.CoverageType != nil || req.CoverageLevel != nil || req.EmploymentStatus != nil || req.HealthInfo != nil {
			p.Individual = patchIndividual(current.Individual, req, errs)
		}
	case TypeBusiness:
		rejectIndividualFields(req.CoverageType, req.CoverageLevel, req.EmploymentStatus, req.HealthInfo, errs)
		if req.Industry != nil || req.NumEmployees != nil || req.AnnualRevenue != nil || req.BusinessInfo != nil {
			p.Business = patchBusiness(current.Business, req, errs)
		}
	}

	if err := validationResult(errs); err != nil {
		return Patch{}, err
	}
	if p.Empty() && !reexpire {
		errs.Add("body", "no updatable fields supplied")
		return Patch{}, validationResult(errs)
	}
	return p, nil
}

func editedFields(req UpdateRequest) []string {
	var out []string
	add := func(present bool, name string) {
		if present {
			out = append(out, name)
		}
	}
	add(req.Description != nil, "description")
	add(req.CoverageType != nil, "coverage_type")
	add(req.CoverageLevel != nil, "coverage_level")
	add(req.EmploymentStatus != nil, "employment_status")
	add(req.HealthInfo != nil, "health_info")
	add(req.Industry != nil, "industry")
	add(req.NumEmployees != nil, "num_employees")
	add(req.AnnualRevenue != nil, "annual_revenue")
	add(req.BusinessInfo != nil, "business_info")
	return out
}

func patchIndividual(cur *IndividualTrack, req UpdateRequest, errs FieldErrors) *IndividualTrack {
	next := IndividualTrack{}
	if cur != nil {
		next = *cur
	}
	if req.CoverageType != nil {
		next.CoverageType = requiredEnum("coverage_type", req.CoverageType, CoverageTypes, errs)
	}
	if req.CoverageLevel != nil {
		next.CoverageLevel = requiredEnum("coverage_level", req.CoverageLevel, CoverageLevels, errs)
	}
	if req.EmploymentStatus != nil {
		next.EmploymentStatus = requiredEnum("employment_status", req.EmploymentStatus, EmploymentStatuses, errs)
	}
	if req.HealthInfo != nil {
		next.HealthInfo = normalizeHealthInfo(req.HealthInfo, errs)
	}
	return &next
}

func patchBusiness(cur *BusinessTrack, req UpdateRequest, errs FieldErrors) *BusinessTrack {
	next := BusinessTrack{}
	if cur != nil {
		next = *cur
	}
	if req.Industry != nil {
		next.Industry = requiredEnum("industry", req.Industry, Industries, errs)
	}
	if req.NumEmployees != nil {
		next.NumEmployees = parseCount("num_employees", req.NumEmployees, errs)
	}
	if req.AnnualRevenue != nil {
		next.AnnualRevenue = parseOptionalMoney("annual_revenue", req.AnnualRevenue, maxRevenueDigits, errs)
	}
	if req.BusinessInfo != nil {
		next.Info = validateBusinessInfo(*req.BusinessInfo, next.Industry, errs)
	} else if req.Industry != nil && next.Industry == IndustryOther && strings.TrimSpace(next.Info.IndustryOther) == "" {
		errs.Add("business_info.industry_other", "is required when industry is Other")
	} else if req.Industry != nil && next.Industry != IndustryOther {
		next.Info.IndustryOther = ""
	}
	return &next
}

func validateBusinessInfo(in BusinessInfoInput, industry string, errs FieldErrors) BusinessInfo {
	var out BusinessInfo

	size, ok := canonical(in.CompanySize, CompanySizes)
	if !ok {
		errs.Add("business_info.company_size", "must be one of "+strings.Join(CompanySizes, ", "))
	}
	out.CompanySize = size

	if industry == IndustryOther {
		out.IndustryOther = strings.TrimSpace(in.IndustryOther)
		if out.IndustryOther == "" {
			errs.Add("business_info.industry_other", "is required when industry is Other")
		}
	}

	switch ComplianceFlag(strings.ToLower(strings.TrimSpace(in.HasCompliance))) {
	case ComplianceYes:
		out.Compliance = ComplianceYes
		out.ComplianceTypes = validateFrameworks(in.ComplianceTypes, errs)
		if containsString(out.ComplianceTypes, FrameworkOther) {
			out.ComplianceOther = strings.TrimSpace(in.ComplianceOther)
			if out.ComplianceOther == "" {
				errs.Add("business_info.compliance_other", "is required when compliance_types includes Other")
			}
		}
	case ComplianceNo:
		out.Compliance = ComplianceNo
	case ComplianceNotSure:
		out.Compliance = ComplianceNotSure
	default:
		errs.Add("business_info.has_compliance", "must be one of yes, no, not-sure")
	}

	if in.HasRemoteWorkforce == nil {
		errs.Add("business_info.has_remote_workforce", "is required")
	} else {
		out.RemoteWorkforce = *in.HasRemoteWorkforce
	}

	if in.Budget == nil || *in.Budget == "" {
		errs.Add("business_info.budget", "is required")
	} else if b, ok := parseMoney("business_info.budget", *in.Budget, true, maxRevenueDigits, errs); ok {
		out.MonthlyBudget = b
	}

	out.CurrentSolutions = strings.TrimSpace(in.CurrentSolutions)
	out.SecurityRequirements = strings.TrimSpace(in.SecurityRequirements)
	return out
}

func validateFrameworks(in []string, errs FieldErrors) []string {
	if len(in) == 0 {
		errs.Add("business_info.compliance_types", "at least one framework is required when has_compliance is yes")
		return nil
	}
	out := make([]string, 0, len(in))
	for _, raw := range in {
		fw, ok := canonical(raw, ComplianceFrameworks)
		if !ok {
			errs.Add("business_info.compliance_types", "unknown framework "+strings.TrimSpace(raw))
			continue
		}
		if !containsString(out, fw) {
			out = append(out, fw)
		}
	}
	return out
}

func rejectBusinessFields(industry *string, employees, revenue *Number, info *BusinessInfoInput, errs FieldErrors) {
	const msg = "not allowed on individual quotes"
	if industry != nil {
		errs.Add("industry", msg)
	}
	if employees != nil {
		errs.Add("num_employees", msg)
	}
	if revenue != nil {
		errs.Add("annual_revenue", msg)
	}
	if info != nil {
		errs.Add("business_info", msg)
	}
}

func rejectIndividualFields(coverageType, coverageLevel, employment *string, health *HealthInfo, errs FieldErrors) {
	const msg = "not allowed on business quotes"
	if coverageType != nil {
		errs.Add("coverage_type", msg)
	}
	if coverageLevel != nil {
		errs.Add("coverage_level", msg)
	}
	if employment != nil {
		errs.Add("employment_status", msg)
	}
	if health != nil {
		errs.Add("health_info", msg)
	}
}

func requiredEnum(field string, v *string, set []string, errs FieldErrors) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		errs.Add(field, "is required")
		return ""
	}
	out, ok := canonical(*v, set)
	if !ok {
		errs.Add(field, "must be one of "+strings.Join(set, ", "))
	}
	return out
}

func normalizeDescription(v *string, errs FieldErrors) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	if len(s) > maxDescriptionLen {
		errs.Add("description", "is too long")
	}
	return &s
}

func normalizeHealthInfo(in *HealthInfo, errs FieldErrors) *HealthInfo {
	if in == nil {
		return nil
	}
	out := *in
	if out.Dependents < 0 {
		errs.Add("health_info.dependents", "must not be negative")
	}
	out.PreExistingConditions = trimAll(out.PreExistingConditions)
	out.Medications = trimAll(out.Medications)
	out.Notes = strings.TrimSpace(out.Notes)
	return &out
}

func parseMoney(field string, n Number, positive bool, maxDigits int32, errs FieldErrors) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(string(n)))
	if err != nil {
		errs.Add(field, "must be a number")
		return decimal.Decimal{}, false
	}
	switch {
	case d.IsNegative():
		errs.Add(field, "must not be negative")
	case positive && d.IsZero():
		errs.Add(field, "must be greater than zero")
	case !d.Equal(d.Truncate(2)):
		errs.Add(field, "must have at most 2 decimal places")
	case d.GreaterThanOrEqual(decimal.New(1, maxDigits)):
		errs.Add(field, "is too large")
	default:
		return d, true
	}
	return decimal.Decimal{}, false
}

func parseOptionalMoney(field string, n *Number, maxDigits int32, errs FieldErrors) decimal.NullDecimal {
	if n == nil || *n == "" {
		return decimal.NullDecimal{}
	}
	d, ok := parseMoney(field, *n, false, maxDigits, errs)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parseCount(field string, n *Number, errs FieldErrors) *int {
	if n == nil || *n == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(string(*n)))
	if err != nil || !d.IsInteger() {
		errs.Add(field, "must be a whole number")
		return nil
	}
	if d.IsNegative() || d.GreaterThan(decimal.New(1, 9)) {
		errs.Add(field, "is out of range")
		return nil
	}
	v := int(d.IntPart())
	return &v
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
