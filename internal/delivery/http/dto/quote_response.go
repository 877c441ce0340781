package dto

import (
	"time"

	"guardquote/internal/domain/quote"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteResponse is the flat external shape of a quote. Fields of the track
// that does not match quote_type are always null.
type QuoteResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	QuoteType       string    `json:"quote_type"`
	Status          string    `json:"status"`
	EstimatedAmount *string   `json:"estimated_amount"`
	Description     *string   `json:"description"`

	CoverageType     *string           `json:"coverage_type"`
	CoverageLevel    *string           `json:"coverage_level"`
	EmploymentStatus *string           `json:"employment_status"`
	HealthInfo       *quote.HealthInfo `json:"health_info"`

	Industry      *string               `json:"industry"`
	NumEmployees  *int                  `json:"num_employees"`
	AnnualRevenue *string               `json:"annual_revenue"`
	BusinessInfo  *BusinessInfoResponse `json:"business_info"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BusinessInfoResponse struct {
	CompanySize          string   `json:"company_size"`
	IndustryOther        *string  `json:"industry_other"`
	HasCompliance        string   `json:"has_compliance"`
	ComplianceTypes      []string `json:"compliance_types"`
	ComplianceOther      *string  `json:"compliance_other"`
	HasRemoteWorkforce   bool     `json:"has_remote_workforce"`
	CurrentSolutions     *string  `json:"current_solutions"`
	Budget               string   `json:"budget"`
	SecurityRequirements *string  `json:"security_requirements"`
}

func NewQuoteResponse(q quote.Quote) QuoteResponse {
	res := QuoteResponse{
		ID:              q.ID,
		UserID:          q.UserID,
		QuoteType:       string(q.Type),
		Status:          string(q.Status),
		EstimatedAmount: money(q.EstimatedAmount),
		Description:     q.Description,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}

	if t := q.Individual; t != nil {
		res.CoverageType = &t.CoverageType
		res.CoverageLevel = &t.CoverageLevel
		res.EmploymentStatus = &t.EmploymentStatus
		res.HealthInfo = t.HealthInfo
	}

	if t := q.Business; t != nil {
		res.Industry = &t.Industry
		res.NumEmployees = t.NumEmployees
		res.AnnualRevenue = money(t.AnnualRevenue)

		info := t.Info
		types := info.ComplianceTypes
		if types == nil {
			types = []string{}
		}
		res.BusinessInfo = &BusinessInfoResponse{
			CompanySize:          info.CompanySize,
			IndustryOther:        nonEmpty(info.IndustryOther),
			HasCompliance:        string(info.Compliance),
			ComplianceTypes:      types,
			ComplianceOther:      nonEmpty(info.ComplianceOther),
			HasRemoteWorkforce:   info.RemoteWorkforce,
			CurrentSolutions:     nonEmpty(info.CurrentSolutions),
			Budget:               info.MonthlyBudget.StringFixed(2),
			SecurityRequirements: nonEmpty(info.SecurityRequirements),
		}
	}
	return res
}

func NewQuoteListResponse(items []quote.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(items))
	for _, q := range items {
		out = append(out, NewQuoteResponse(q))
	}
	return out
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func money(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
