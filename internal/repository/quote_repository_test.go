package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"guardquote/internal/database"
	"guardquote/internal/domain/quote"
	"guardquote/internal/domain/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan dest mismatch: %d != %d", len(dest), len(r.vals))
	}
	for i := range dest {
		target := reflect.ValueOf(dest[i]).Elem()
		if r.vals[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(r.vals[i])
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan type mismatch at %d: %s into %s", i, v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}

type fakeRows struct {
	rows []fakeRow
	pos  int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.rows)
}
func (r *fakeRows) Scan(dest ...any) error { return r.rows[r.pos-1].Scan(dest...) }

type recordedCall struct {
	query string
	args  []any
}

type fakeDB struct {
	calls []recordedCall

	row      fakeRow
	rows     []fakeRow
	affected int64
	execErr  error
}

func (db *fakeDB) Ping(context.Context) error { return nil }
func (db *fakeDB) Close() error               { return nil }
func (db *fakeDB) Begin(context.Context) (database.Tx, error) {
	return nil, fmt.Errorf("not implemented")
}

func (db *fakeDB) Exec(_ context.Context, query string, args ...any) (int64, error) {
	db.calls = append(db.calls, recordedCall{query: query, args: args})
	return db.affected, db.execErr
}

func (db *fakeDB) Query(_ context.Context, query string, args ...any) (database.Rows, error) {
	db.calls = append(db.calls, recordedCall{query: query, args: args})
	return &fakeRows{rows: db.rows}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, query string, args ...any) database.Row {
	db.calls = append(db.calls, recordedCall{query: query, args: args})
	return db.row
}

func normalizeSQL(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

func sp(s string) *string { return &s }

func businessRowValues(id, owner uuid.UUID, status string, amount *string) []any {
	now := time.Now().UTC()
	return []any{
		id, owner, "business", status, amount, sp("office network"),
		nil, nil, nil, nil,
		sp("Finance"), nil, sp("250000.00"),
		[]byte(`{"company_size":"11-50","has_compliance":"yes","compliance_types":["SOX"],"has_remote_workforce":true,"budget":"1200.00"}`),
		now, now,
	}
}

func TestPostgresQuoteRepository_GetByID_Decodes(t *testing.T) {
	id, owner := uuid.New(), uuid.New()
	db := &fakeDB{row: fakeRow{vals: businessRowValues(id, owner, "quoted", sp("950.50"))}}
	repo := NewPostgresQuoteRepository(db)

	q, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if q.ID != id || q.UserID != owner || q.Status != quote.StatusQuoted {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if !q.EstimatedAmount.Valid || !q.EstimatedAmount.Decimal.Equal(decimal.RequireFromString("950.5")) {
		t.Fatalf("unexpected amount: %+v", q.EstimatedAmount)
	}
	if q.Individual != nil || q.Business == nil {
		t.Fatalf("expected business track only")
	}
	b := q.Business
	if b.Industry != "Finance" || !b.AnnualRevenue.Valid || b.NumEmployees != nil {
		t.Fatalf("unexpected business track: %+v", b)
	}
	if !b.Info.RemoteWorkforce || b.Info.Compliance != quote.ComplianceYes || !b.Info.MonthlyBudget.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("unexpected business info: %+v", b.Info)
	}
}

func TestPostgresQuoteRepository_GetByID_NotFound(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewPostgresQuoteRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, quote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresQuoteRepository_ListByOwner_Order(t *testing.T) {
	owner := uuid.New()
	db := &fakeDB{rows: []fakeRow{
		{vals: businessRowValues(uuid.New(), owner, "pending", nil)},
		{vals: businessRowValues(uuid.New(), owner, "pending", nil)},
	}}
	repo := NewPostgresQuoteRepository(db)

	items, err := repo.ListByOwner(context.Background(), owner, quote.OrderDesc)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got := normalizeSQL(db.calls[0].query); !strings.HasSuffix(got, "ORDER BY seq DESC") {
		t.Fatalf("expected descending order, got %q", got)
	}
}

func TestPostgresQuoteRepository_UpdateByID_Conditional(t *testing.T) {
	db := &fakeDB{affected: 1}
	repo := NewPostgresQuoteRepository(db)

	id := uuid.New()
	to := quote.StatusQuoted
	from := quote.StatusInReview
	patch := quote.Patch{
		Status:             &to,
		SetEstimatedAmount: true,
		EstimatedAmount:    decimal.NewNullDecimal(decimal.RequireFromString("120.00")),
	}

	n, err := repo.UpdateByID(context.Background(), id, patch, &from)
	if err != nil || n != 1 {
		t.Fatalf("unexpected result: %d %v", n, err)
	}

	call := db.calls[0]
	want := "UPDATE quotes SET status = $1, estimated_amount = $2::numeric, updated_at = now() WHERE id = $3 AND status = $4"
	if got := normalizeSQL(call.query); got != want {
		t.Fatalf("query = %q\nwant   %q", got, want)
	}
	wantArgs := []any{"quoted", "120", id, "in_review"}
	if !reflect.DeepEqual(call.args, wantArgs) {
		t.Fatalf("args = %#v, want %#v", call.args, wantArgs)
	}
}

func TestPostgresQuoteRepository_UpdateByID_ClearsAmount(t *testing.T) {
	db := &fakeDB{affected: 1}
	repo := NewPostgresQuoteRepository(db)

	to := quote.StatusRejected
	_, err := repo.UpdateByID(context.Background(), uuid.New(), quote.Patch{Status: &to, SetEstimatedAmount: true}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	call := db.calls[0]
	if call.args[1] != nil {
		t.Fatalf("expected NULL amount, got %#v", call.args[1])
	}
	if strings.Contains(call.query, "AND status") {
		t.Fatalf("unconditional update should not guard on status")
	}
}

func TestPostgresQuoteRepository_Insert(t *testing.T) {
	id := uuid.New()
	db := &fakeDB{row: fakeRow{vals: []any{id}}}
	repo := NewPostgresQuoteRepository(db)

	got, err := repo.Insert(context.Background(), quote.Quote{
		ID:     id,
		UserID: uuid.New(),
		Type:   quote.TypeIndividual,
		Individual: &quote.IndividualTrack{
			CoverageType:     "dental",
			CoverageLevel:    "basic",
			EmploymentStatus: "student",
		},
	})
	if err != nil || got != id {
		t.Fatalf("unexpected result: %v %v", got, err)
	}
	args := db.calls[0].args
	if args[3] != "pending" {
		t.Fatalf("expected pending status, got %#v", args[3])
	}
	if args[9] != nil || args[13] != nil {
		t.Fatalf("expected NULL json columns, got %#v %#v", args[9], args[13])
	}
}

func TestPostgresUserRepository_CreateUser_Duplicate(t *testing.T) {
	db := &fakeDB{execErr: &pgconn.PgError{Code: "23505"}}
	repo := NewPostgresUserRepository(db)

	err := repo.CreateUser(context.Background(), user.User{ID: uuid.New(), Email: "a@example.com"})
	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPostgresUserRepository_GetUserByID(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()
	db := &fakeDB{row: fakeRow{vals: []any{
		id, "owner@example.com", "hash", "Ada", "Lovelace", "business", sp("Analytical Ltd"), nil, now, now,
	}}}
	repo := NewPostgresUserRepository(db)

	u, err := repo.GetUserByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.UserType != user.TypeBusiness || u.CompanyName == nil || *u.CompanyName != "Analytical Ltd" || u.Phone != nil {
		t.Fatalf("unexpected user: %+v", u)
	}

	db.row = fakeRow{err: sql.ErrNoRows}
	if _, err := repo.GetUserByID(context.Background(), id); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
