package quote

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeIndividual Type = "individual"
	TypeBusiness   Type = "business"
)

func (t Type) Valid() bool {
	return t == TypeIndividual || t == TypeBusiness
}

// Quote is a single applicant's request record. Exactly one of Individual and
// Business is set, matching Type.
type Quote struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Type            Type                `json:"quote_type"`
	Status          Status              `json:"status"`
	EstimatedAmount decimal.NullDecimal `json:"estimated_amount"`
	Description     *string             `json:"description"`

	Individual *IndividualTrack `json:"individual,omitempty"`
	Business   *BusinessTrack   `json:"business,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type IndividualTrack struct {
	CoverageType     string      `json:"coverage_type"`
	CoverageLevel    string      `json:"coverage_level"`
	EmploymentStatus string      `json:"employment_status"`
	HealthInfo       *HealthInfo `json:"health_info,omitempty"`
}

// HealthInfo is only collected when the applicant opts in.
type HealthInfo struct {
	Smoker                bool     `json:"smoker"`
	PreExistingConditions []string `json:"pre_existing_conditions,omitempty"`
	Medications           []string `json:"medications,omitempty"`
	Dependents            int      `json:"dependents"`
	Notes                 string   `json:"notes,omitempty"`
}

type BusinessTrack struct {
	Industry      string              `json:"industry"`
	NumEmployees  *int                `json:"num_employees,omitempty"`
	AnnualRevenue decimal.NullDecimal `json:"annual_revenue"`
	Info          BusinessInfo        `json:"business_info"`
}

type BusinessInfo struct {
	CompanySize          string          `json:"company_size"`
	IndustryOther        string          `json:"industry_other,omitempty"`
	Compliance           ComplianceFlag  `json:"has_compliance"`
	ComplianceTypes      []string        `json:"compliance_types,omitempty"`
	ComplianceOther      string          `json:"compliance_other,omitempty"`
	RemoteWorkforce      bool            `json:"has_remote_workforce"`
	CurrentSolutions     string          `json:"current_solutions,omitempty"`
	MonthlyBudget        decimal.Decimal `json:"budget"`
	SecurityRequirements string          `json:"security_requirements,omitempty"`
}

type ComplianceFlag string

const (
	ComplianceYes     ComplianceFlag = "yes"
	ComplianceNo      ComplianceFlag = "no"
	ComplianceNotSure ComplianceFlag = "not-sure"
)

const (
	IndustryOther    = "Other"
	FrameworkOther   = "Other"
	maxAmountDigits  = 8
	maxRevenueDigits = 13
)

var (
	CoverageTypes        = []string{"health", "life", "disability", "dental", "vision", "home", "auto", "cyber"}
	CoverageLevels       = []string{"basic", "standard", "premium"}
	EmploymentStatuses   = []string{"employed", "self-employed", "unemployed", "student", "retired"}
	CompanySizes         = []string{"1-10", "11-50", "51-200", "201-1000", "1000+"}
	Industries           = []string{"Technology", "Finance", "Healthcare", "Retail", "Manufacturing", "Education", "Government", "Legal", IndustryOther}
	ComplianceFrameworks = []string{"HIPAA", "GDPR", "PCI-DSS", "SOX", "CCPA", "ISO/IEC 27001", FrameworkOther}
)

// canonical matches v case-insensitively against set and returns the set's spelling.
func canonical(v string, set []string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return s, true
		}
	}
	return "", false
}
