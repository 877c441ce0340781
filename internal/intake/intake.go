// Package intake turns the answers collected by the quote request forms into
// a creation payload. It decides which answers are required for each
// applicant type; type and range checks are left to quote.ValidateCreate.
package intake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"guardquote/internal/domain/quote"
)

// Answer keys shared with the web forms.
const (
	KeyDescription = "description"

	KeyCoverageType      = "coverage_type"
	KeyCoverageLevel     = "coverage_level"
	KeyEmploymentStatus  = "employment_status"
	KeyProvideHealthInfo = "provide_health_info"
	KeySmoker            = "smoker"
	KeyConditions        = "pre_existing_conditions"
	KeyMedications       = "medications"
	KeyDependents        = "dependents"
	KeyHealthNotes       = "health_notes"

	KeyCompanySize          = "company_size"
	KeyIndustry             = "industry"
	KeyIndustryOther        = "industry_other"
	KeyHasCompliance        = "has_compliance"
	KeyComplianceTypes      = "compliance_types"
	KeyComplianceOther      = "compliance_other"
	KeyRemoteWorkforce      = "has_remote_workforce"
	KeyBudget               = "budget"
	KeyCurrentSolutions     = "current_solutions"
	KeySecurityRequirements = "security_requirements"
	KeyNumEmployees         = "num_employees"
	KeyAnnualRevenue        = "annual_revenue"
)

// Answers maps answer keys to raw values: strings, numbers, booleans or
// string sets, as decoded from JSON.
type Answers map[string]any

// Build resolves the track for applicant and produces a creation payload.
// It fails with *quote.IncompleteIntakeError listing every missing answer, or
// *quote.ValidationError when an answer has the wrong shape.
func Build(applicant quote.Type, answers Answers) (quote.CreateRequest, error) {
	r := reader{answers: answers, badType: quote.FieldErrors{}}

	var req quote.CreateRequest
	switch applicant {
	case quote.TypeIndividual:
		req = r.individual()
	case quote.TypeBusiness:
		req = r.business()
	default:
		errs := quote.FieldErrors{}
		errs.Add("quote_type", "must be one of individual, business")
		return quote.CreateRequest{}, &quote.ValidationError{Errors: errs}
	}

	if len(r.missing) > 0 {
		return quote.CreateRequest{}, &quote.IncompleteIntakeError{Missing: r.missing}
	}
	if len(r.badType) > 0 {
		return quote.CreateRequest{}, &quote.ValidationError{Errors: r.badType}
	}
	return req, nil
}

type reader struct {
	answers Answers
	missing []string
	badType quote.FieldErrors
}

func (r *reader) individual() quote.CreateRequest {
	req := quote.CreateRequest{
		QuoteType:        string(quote.TypeIndividual),
		Description:      r.optionalString(KeyDescription),
		CoverageType:     r.requiredString(KeyCoverageType),
		CoverageLevel:    r.requiredString(KeyCoverageLevel),
		EmploymentStatus: r.requiredString(KeyEmploymentStatus),
	}

	if opt := r.optionalBool(KeyProvideHealthInfo); opt != nil && *opt {
		h := &quote.HealthInfo{
			PreExistingConditions: r.stringSet(KeyConditions),
			Medications:           r.stringSet(KeyMedications),
		}
		if smoker := r.optionalBool(KeySmoker); smoker != nil {
			h.Smoker = *smoker
		}
		if n := r.optionalNumber(KeyDependents); n != nil {
			d, err := strconv.Atoi(string(*n))
			if err != nil {
				r.badType.Add(KeyDependents, "must be a whole number")
			}
			h.Dependents = d
		}
		if notes := r.optionalString(KeyHealthNotes); notes != nil {
			h.Notes = *notes
		}
		req.HealthInfo = h
	}
	return req
}

func (r *reader) business() quote.CreateRequest {
	info := &quote.BusinessInfoInput{}
	req := quote.CreateRequest{
		QuoteType:     string(quote.TypeBusiness),
		Description:   r.optionalString(KeyDescription),
		NumEmployees:  r.optionalNumber(KeyNumEmployees),
		AnnualRevenue: r.optionalNumber(KeyAnnualRevenue),
		BusinessInfo:  info,
	}

	if size := r.requiredString(KeyCompanySize); size != nil {
		info.CompanySize = *size
	}

	req.Industry = r.requiredString(KeyIndustry)
	if req.Industry != nil && strings.EqualFold(strings.TrimSpace(*req.Industry), quote.IndustryOther) {
		if other := r.requiredString(KeyIndustryOther); other != nil {
			info.IndustryOther = *other
		}
	}

	if flag := r.requiredString(KeyHasCompliance); flag != nil {
		info.HasCompliance = *flag
		if quote.ComplianceFlag(strings.ToLower(strings.TrimSpace(*flag))) == quote.ComplianceYes {
			info.ComplianceTypes = r.stringSet(KeyComplianceTypes)
			if len(info.ComplianceTypes) == 0 {
				r.missing = append(r.missing, KeyComplianceTypes)
			}
			if includesFold(info.ComplianceTypes, quote.FrameworkOther) {
				if other := r.requiredString(KeyComplianceOther); other != nil {
					info.ComplianceOther = *other
				}
			}
		}
	}

	info.HasRemoteWorkforce = r.requiredBool(KeyRemoteWorkforce)
	info.Budget = r.requiredNumber(KeyBudget)

	if s := r.optionalString(KeyCurrentSolutions); s != nil {
		info.CurrentSolutions = *s
	}
	if s := r.optionalString(KeySecurityRequirements); s != nil {
		info.SecurityRequirements = *s
	}
	return req
}

func (r *reader) present(key string) (any, bool) {
	v, ok := r.answers[key]
	if !ok || v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		return t, strings.TrimSpace(t) != ""
	case []any:
		return t, len(t) > 0
	case []string:
		return t, len(t) > 0
	}
	return v, true
}

func (r *reader) optionalString(key string) *string {
	v, ok := r.present(key)
	if !ok {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64, json.Number, int, int64:
		s = fmt.Sprint(t)
	default:
		r.badType.Add(key, "must be text")
		return nil
	}
	return &s
}

func (r *reader) requiredString(key string) *string {
	if _, ok := r.present(key); !ok {
		r.missing = append(r.missing, key)
		return nil
	}
	return r.optionalString(key)
}

func (r *reader) optionalBool(key string) *bool {
	v, ok := r.present(key)
	if !ok {
		return nil
	}
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "true", "1", "on":
			b = true
		case "no", "false", "0", "off":
			b = false
		default:
			r.badType.Add(key, "must be yes or no")
			return nil
		}
	default:
		r.badType.Add(key, "must be yes or no")
		return nil
	}
	return &b
}

func (r *reader) requiredBool(key string) *bool {
	if _, ok := r.present(key); !ok {
		r.missing = append(r.missing, key)
		return nil
	}
	return r.optionalBool(key)
}

func (r *reader) optionalNumber(key string) *quote.Number {
	v, ok := r.present(key)
	if !ok {
		return nil
	}
	var n quote.Number
	switch t := v.(type) {
	case float64:
		n = quote.Number(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		n = quote.Number(strconv.Itoa(t))
	case int64:
		n = quote.Number(strconv.FormatInt(t, 10))
	case json.Number:
		n = quote.Number(t.String())
	case string:
		n = quote.Number(strings.TrimSpace(t))
	default:
		r.badType.Add(key, "must be a number")
		return nil
	}
	return &n
}

func (r *reader) requiredNumber(key string) *quote.Number {
	if _, ok := r.present(key); !ok {
		r.missing = append(r.missing, key)
		return nil
	}
	return r.optionalNumber(key)
}

func (r *reader) stringSet(key string) []string {
	v, ok := r.present(key)
	if !ok {
		return nil
	}
	var out []string
	switch t := v.(type) {
	case []string:
		out = append(out, t...)
	case []any:
		for _, it := range t {
			s, ok := it.(string)
			if !ok {
				r.badType.Add(key, "must be a list of text values")
				return nil
			}
			out = append(out, s)
		}
	case string:
		out = []string{t}
	default:
		r.badType.Add(key, "must be a list of text values")
		return nil
	}

	cleaned := out[:0]
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

func includesFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}
