package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"guardquote/internal/database"
	"guardquote/internal/domain/quote"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const quoteColumns = `id, user_id, quote_type, status, estimated_amount::text, description,
	coverage_type, coverage_level, employment_status, health_info,
	industry, num_employees, annual_revenue::text, business_info,
	created_at, updated_at`

type PostgresQuoteRepository struct {
	db database.Querier
}

var _ quote.Repository = (*PostgresQuoteRepository)(nil)

// NewPostgresQuoteRepository runs on a pool or, for multi-statement writes, on
// an open transaction.
func NewPostgresQuoteRepository(db database.Querier) *PostgresQuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

func (r *PostgresQuoteRepository) Insert(ctx context.Context, q quote.Quote) (uuid.UUID, error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = quote.StatusPending
	}

	ind := individualColumns(q.Individual)
	bus, err := businessColumns(q.Business)
	if err != nil {
		return uuid.Nil, err
	}
	health, err := ind.healthJSON()
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	row := r.db.QueryRow(ctx,
		`INSERT INTO quotes (
			id, user_id, quote_type, status, estimated_amount, description,
			coverage_type, coverage_level, employment_status, health_info,
			industry, num_employees, annual_revenue, business_info
		 ) VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10::jsonb, $11, $12, $13::numeric, $14::jsonb)
		 RETURNING id`,
		q.ID, q.UserID, string(q.Type), string(q.Status), nullDecimal(q.EstimatedAmount), q.Description,
		ind.coverageType, ind.coverageLevel, ind.employment, health,
		bus.industry, bus.numEmployees, bus.annualRevenue, bus.info,
	)
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *PostgresQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (quote.Quote, error) {
	row := r.db.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
	q, err := scanQuote(row)
	if err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return quote.Quote{}, quote.ErrNotFound
		}
		return quote.Quote{}, err
	}
	return q, nil
}

func (r *PostgresQuoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, order quote.ListOrder) ([]quote.Quote, error) {
	dir := "ASC"
	if order == quote.OrderDesc {
		dir = "DESC"
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+quoteColumns+`
		 FROM quotes
		 WHERE user_id = $1
		 ORDER BY seq `+dir,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]quote.Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresQuoteRepository) UpdateByID(ctx context.Context, id uuid.UUID, p quote.Patch, expected *quote.Status) (int64, error) {
	var (
		sets []string
		args []any
	)
	set := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if p.Status != nil {
		set("status = $%d", string(*p.Status))
	}
	if p.SetEstimatedAmount {
		set("estimated_amount = $%d::numeric", nullDecimal(p.EstimatedAmount))
	}
	if p.SetDescription {
		set("description = $%d", p.Description)
	}
	if p.Individual != nil {
		ind := individualColumns(p.Individual)
		health, err := ind.healthJSON()
		if err != nil {
			return 0, err
		}
		set("coverage_type = $%d", ind.coverageType)
		set("coverage_level = $%d", ind.coverageLevel)
		set("employment_status = $%d", ind.employment)
		set("health_info = $%d::jsonb", health)
	}
	if p.Business != nil {
		bus, err := businessColumns(p.Business)
		if err != nil {
			return 0, err
		}
		set("industry = $%d", bus.industry)
		set("num_employees = $%d", bus.numEmployees)
		set("annual_revenue = $%d::numeric", bus.annualRevenue)
		set("business_info = $%d::jsonb", bus.info)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if expected != nil {
		args = append(args, string(*expected))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	return r.db.Exec(ctx, `UPDATE quotes SET `+strings.Join(sets, ", ")+` WHERE `+where, args...)
}

func (r *PostgresQuoteRepository) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.db.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
}

// ListExpirable returns open quotes untouched since updatedBefore, oldest first.
func (r *PostgresQuoteRepository) ListExpirable(ctx context.Context, updatedBefore time.Time, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := r.db.Query(ctx,
		`SELECT id
		 FROM quotes
		 WHERE status IN ($1, $2, $3) AND updated_at < $4
		 ORDER BY seq ASC
		 LIMIT $5`,
		string(quote.StatusPending), string(quote.StatusInReview), string(quote.StatusQuoted), updatedBefore, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type individualRow struct {
	coverageType  *string
	coverageLevel *string
	employment    *string
	health        *quote.HealthInfo
}

func individualColumns(t *quote.IndividualTrack) individualRow {
	if t == nil {
		return individualRow{}
	}
	return individualRow{
		coverageType:  &t.CoverageType,
		coverageLevel: &t.CoverageLevel,
		employment:    &t.EmploymentStatus,
		health:        t.HealthInfo,
	}
}

func (r individualRow) healthJSON() (any, error) {
	if r.health == nil {
		return nil, nil
	}
	b, err := json.Marshal(r.health)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type businessRow struct {
	industry      *string
	numEmployees  *int
	annualRevenue any
	info          any
}

func businessColumns(t *quote.BusinessTrack) (businessRow, error) {
	if t == nil {
		return businessRow{}, nil
	}
	b, err := json.Marshal(t.Info)
	if err != nil {
		return businessRow{}, err
	}
	return businessRow{
		industry:      &t.Industry,
		numEmployees:  t.NumEmployees,
		annualRevenue: nullDecimal(t.AnnualRevenue),
		info:          string(b),
	}, nil
}

func nullDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (quote.Quote, error) {
	var (
		q                                       quote.Quote
		qType, status                           string
		amount, revenue                         *string
		coverageType, coverageLevel, employment *string
		industry                                *string
		numEmployees                            *int
		health, info                            []byte
	)
	if err := row.Scan(
		&q.ID, &q.UserID, &qType, &status, &amount, &q.Description,
		&coverageType, &coverageLevel, &employment, &health,
		&industry, &numEmployees, &revenue, &info,
		&q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return quote.Quote{}, err
	}
	q.Type = quote.Type(qType)
	q.Status = quote.Status(status)

	var err error
	if q.EstimatedAmount, err = parseNullDecimal(amount); err != nil {
		return quote.Quote{}, err
	}

	switch q.Type {
	case quote.TypeIndividual:
		t := &quote.IndividualTrack{
			CoverageType:     deref(coverageType),
			CoverageLevel:    deref(coverageLevel),
			EmploymentStatus: deref(employment),
		}
		if len(health) > 0 {
			var h quote.HealthInfo
			if err := json.Unmarshal(health, &h); err != nil {
				return quote.Quote{}, fmt.Errorf("decode health_info: %w", err)
			}
			t.HealthInfo = &h
		}
		q.Individual = t
	case quote.TypeBusiness:
		t := &quote.BusinessTrack{Industry: deref(industry), NumEmployees: numEmployees}
		if t.AnnualRevenue, err = parseNullDecimal(revenue); err != nil {
			return quote.Quote{}, err
		}
		if len(info) > 0 {
			if err := json.Unmarshal(info, &t.Info); err != nil {
				return quote.Quote{}, fmt.Errorf("decode business_info: %w", err)
			}
		}
		q.Business = t
	}
	return q, nil
}

func parseNullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
