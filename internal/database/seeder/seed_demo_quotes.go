package seeder

import (
	"context"
	"errors"
	"fmt"

	"guardquote/internal/database"
	"guardquote/internal/domain/quote"
	"guardquote/internal/repository"

	"github.com/google/uuid"
)

type demoQuote struct {
	id     uuid.UUID
	owner  uuid.UUID
	req    quote.CreateRequest
	status quote.Status
	amount string
}

// DemoQuotesSeeder stores a few quotes for the demo accounts, walked through
// the status graph so every list shows more than one status.
type DemoQuotesSeeder struct{}

func (DemoQuotesSeeder) Name() string { return "demo_quotes" }

// quoteColumns are the columns the demo quotes write, both tracks included.
var quoteColumns = []string{
	"id", "user_id", "quote_type", "status", "estimated_amount", "description",
	"coverage_type", "coverage_level", "employment_status", "health_info",
	"industry", "num_employees", "annual_revenue", "business_info",
}

func (DemoQuotesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "quotes", quoteColumns...); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	repo := repository.NewPostgresQuoteRepository(tx)
	for _, d := range demoQuotes() {
		if _, err := repo.GetByID(ctx, d.id); err == nil {
			continue
		} else if !errors.Is(err, quote.ErrNotFound) {
			return err
		}

		draft, err := quote.ValidateCreate(d.req)
		if err != nil {
			return fmt.Errorf("demo quote %s: %w", d.id, err)
		}
		q := quote.Quote{
			ID:          d.id,
			UserID:      d.owner,
			Type:        draft.Type,
			Status:      quote.StatusPending,
			Description: draft.Description,
			Individual:  draft.Individual,
			Business:    draft.Business,
		}
		if _, err := repo.Insert(ctx, q); err != nil {
			return fmt.Errorf("insert demo quote %s: %w", d.id, err)
		}
		if err := advance(ctx, repo, q, d.status, d.amount); err != nil {
			return fmt.Errorf("advance demo quote %s: %w", d.id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// advance walks q from pending to target through ValidateUpdate, one
// transition at a time. Every step must touch exactly one row.
func advance(ctx context.Context, repo quote.Repository, q quote.Quote, target quote.Status, amount string) error {
	path := map[quote.Status][]quote.Status{
		quote.StatusPending:  nil,
		quote.StatusInReview: {quote.StatusInReview},
		quote.StatusQuoted:   {quote.StatusInReview, quote.StatusQuoted},
		quote.StatusAccepted: {quote.StatusInReview, quote.StatusQuoted, quote.StatusAccepted},
	}[target]

	for _, next := range path {
		st := string(next)
		req := quote.UpdateRequest{Status: &st}
		if next == quote.StatusQuoted {
			n := quote.Number(amount)
			req.EstimatedAmount = &n
		}
		p, err := quote.ValidateUpdate(q, req)
		if err != nil {
			return err
		}
		expected := q.Status
		n, err := repo.UpdateByID(ctx, q.ID, p, &expected)
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("%s -> %s updated %d rows", expected, next, n)
		}
		p.Apply(&q)
	}
	return nil
}

func demoQuotes() []demoQuote {
	str := func(s string) *string { return &s }
	num := func(s string) *quote.Number { n := quote.Number(s); return &n }
	yes := true

	return []demoQuote{
		{
			id:    uuid.MustParse("7d0c2a9e-3b41-4f6a-8c15-2e9b0d4a6f11"),
			owner: DemoIndividualID,
			req: quote.CreateRequest{
				QuoteType:        string(quote.TypeIndividual),
				CoverageType:     str("health"),
				CoverageLevel:    str("standard"),
				EmploymentStatus: str("employed"),
				HealthInfo:       &quote.HealthInfo{Dependents: 2},
			},
			status: quote.StatusPending,
		},
		{
			id:    uuid.MustParse("7d0c2a9e-3b41-4f6a-8c15-2e9b0d4a6f12"),
			owner: DemoIndividualID,
			req: quote.CreateRequest{
				QuoteType:        string(quote.TypeIndividual),
				Description:      str("Term life for a new mortgage"),
				CoverageType:     str("life"),
				CoverageLevel:    str("premium"),
				EmploymentStatus: str("self-employed"),
			},
			status: quote.StatusQuoted,
			amount: "89.50",
		},
		{
			id:    uuid.MustParse("7d0c2a9e-3b41-4f6a-8c15-2e9b0d4a6f13"),
			owner: DemoBusinessID,
			req: quote.CreateRequest{
				QuoteType:     string(quote.TypeBusiness),
				Industry:      str("Finance"),
				NumEmployees:  num("42"),
				AnnualRevenue: num("3500000.00"),
				BusinessInfo: &quote.BusinessInfoInput{
					CompanySize:        "11-50",
					HasCompliance:      "yes",
					ComplianceTypes:    []string{"PCI-DSS", "SOX"},
					HasRemoteWorkforce: &yes,
					Budget:             num("4000"),
				},
			},
			status: quote.StatusInReview,
		},
	}
}
