package seeder

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"testing"

	"guardquote/internal/database"
	"guardquote/internal/domain/quote"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func TestMissingColumns(t *testing.T) {
	existing := map[string]struct{}{"id": {}, "email": {}}

	if err := missingColumns("users", existing, []string{"id", "email"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	err := missingColumns("users", existing, []string{"id", "first_name", "user_type"})
	if err == nil || err.Error() != "schema mismatch: users is missing first_name, user_type" {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestDemoQuotesAreValid(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range demoQuotes() {
		if seen[d.id.String()] {
			t.Fatalf("duplicate demo quote id %s", d.id)
		}
		seen[d.id.String()] = true

		if _, err := quote.ValidateCreate(d.req); err != nil {
			t.Fatalf("demo quote %s does not validate: %v", d.id, err)
		}
		if d.status == quote.StatusQuoted && d.amount == "" {
			t.Fatalf("demo quote %s is quoted without an amount", d.id)
		}
	}
}

var columnLine = regexp.MustCompile(`^ {4}([a-z_]+) [A-Z]`)

// migrationColumns lists the columns a CREATE TABLE migration declares.
func migrationColumns(t *testing.T, file string) []string {
	t.Helper()
	b, err := os.ReadFile("../../../migrations/" + file)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	var cols []string
	for _, line := range strings.Split(string(b), "\n") {
		if m := columnLine.FindStringSubmatch(line); m != nil {
			cols = append(cols, m[1])
		}
	}
	if len(cols) == 0 {
		t.Fatalf("no columns found in %s", file)
	}
	return cols
}

type seedRow struct {
	scan func(dest ...any) error
}

func (r seedRow) Scan(dest ...any) error { return r.scan(dest...) }

type columnRows struct {
	cols []string
	pos  int
}

func (r *columnRows) Close()     {}
func (r *columnRows) Err() error { return nil }
func (r *columnRows) Next() bool {
	r.pos++
	return r.pos <= len(r.cols)
}
func (r *columnRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.cols[r.pos-1]
	return nil
}

type seedTx struct {
	inserts    int
	updates    int
	affected   int64
	committed  bool
	rolledBack bool
}

func (tx *seedTx) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	if strings.HasPrefix(query, "UPDATE quotes") {
		tx.updates++
	}
	return tx.affected, nil
}

func (tx *seedTx) Query(context.Context, string, ...any) (database.Rows, error) {
	return nil, fmt.Errorf("unexpected query")
}

func (tx *seedTx) QueryRow(_ context.Context, query string, args ...any) database.Row {
	if strings.HasPrefix(strings.TrimSpace(query), "INSERT INTO quotes") {
		tx.inserts++
		return seedRow{scan: func(dest ...any) error {
			*dest[0].(*uuid.UUID) = args[0].(uuid.UUID)
			return nil
		}}
	}
	return seedRow{scan: func(...any) error { return pgx.ErrNoRows }}
}

func (tx *seedTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *seedTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type seedDB struct {
	columns []string
	tx      *seedTx
}

func (db *seedDB) Ping(context.Context) error { return nil }
func (db *seedDB) Close() error               { return nil }
func (db *seedDB) Begin(context.Context) (database.Tx, error) {
	return db.tx, nil
}
func (db *seedDB) Exec(context.Context, string, ...any) (int64, error) {
	return 0, fmt.Errorf("write outside transaction")
}
func (db *seedDB) Query(_ context.Context, query string, _ ...any) (database.Rows, error) {
	if !strings.Contains(query, "information_schema.columns") {
		return nil, fmt.Errorf("unexpected query")
	}
	return &columnRows{cols: db.columns}, nil
}
func (db *seedDB) QueryRow(context.Context, string, ...any) database.Row {
	return seedRow{scan: func(...any) error { return fmt.Errorf("read outside transaction") }}
}

func TestDemoQuotesSeeder_RunsAgainstMigratedSchema(t *testing.T) {
	db := &seedDB{columns: migrationColumns(t, "V2__create_quotes.sql"), tx: &seedTx{affected: 1}}

	if err := (DemoQuotesSeeder{}).Run(context.Background(), db); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !db.tx.committed {
		t.Fatalf("expected the seed transaction to commit")
	}
	// pending: none, quoted: in_review + quoted, in_review: one step
	if db.tx.inserts != 3 || db.tx.updates != 3 {
		t.Fatalf("inserts=%d updates=%d", db.tx.inserts, db.tx.updates)
	}
}

func TestDemoUsersSeeder_ColumnsExistInMigration(t *testing.T) {
	have := map[string]struct{}{}
	for _, c := range migrationColumns(t, "V1__create_users.sql") {
		have[c] = struct{}{}
	}
	if err := missingColumns("users", have, []string{"id", "email", "password_hash", "first_name", "last_name", "user_type", "company_name"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestDemoQuotesSeeder_StaleStepRollsBack(t *testing.T) {
	db := &seedDB{columns: migrationColumns(t, "V2__create_quotes.sql"), tx: &seedTx{affected: 0}}

	err := (DemoQuotesSeeder{}).Run(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "updated 0 rows") {
		t.Fatalf("expected a missed step error, got %v", err)
	}
	if db.tx.committed || !db.tx.rolledBack {
		t.Fatalf("committed=%v rolledBack=%v", db.tx.committed, db.tx.rolledBack)
	}
}
