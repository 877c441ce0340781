package seeder

import (
	"context"
	"fmt"

	"guardquote/internal/database"
	"guardquote/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "guardquote-demo"

var (
	DemoIndividualID = uuid.MustParse("0b5f3c1e-6a0d-4d8e-9f57-1c3a4e2b7d01")
	DemoBusinessID   = uuid.MustParse("0b5f3c1e-6a0d-4d8e-9f57-1c3a4e2b7d02")
)

type DemoUsersSeeder struct{}

func (DemoUsersSeeder) Name() string { return "demo_users" }

func (DemoUsersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "users", "id", "email", "password_hash", "first_name", "last_name", "user_type", "company_name"); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	company := "Northwind Security Ltd"
	items := []user.User{
		{ID: DemoIndividualID, Email: "demo.individual@guardquote.local", FirstName: "Dana", LastName: "Reyes", UserType: user.TypeIndividual},
		{ID: DemoBusinessID, Email: "demo.business@guardquote.local", FirstName: "Kim", LastName: "Osei", UserType: user.TypeBusiness, CompanyName: &company},
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, u := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, first_name, last_name, user_type, company_name)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO NOTHING`,
			u.ID, u.Email, string(hash), u.FirstName, u.LastName, string(u.UserType), u.CompanyName,
		); err != nil {
			return fmt.Errorf("insert %s: %w", u.Email, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
