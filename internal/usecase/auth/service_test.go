package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"guardquote/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]user.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uuid.UUID]user.User{}}
}

func (m *memUsers) CreateUser(_ context.Context, u user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailTaken
		}
	}
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) DeleteUser(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return 0, nil
	}
	delete(m.byID, id)
	return 1, nil
}

func newTestService(users user.Repository) *Service {
	s := NewService(users)
	s.cost = bcrypt.MinCost
	return s
}

func sp(s string) *string { return &s }

func TestService_RegisterAndLogin(t *testing.T) {
	s := newTestService(newMemUsers())
	ctx := context.Background()

	u, err := s.Register(ctx, RegisterInput{
		Email:       "  Owner@Example.com ",
		Password:    "correct-horse",
		FirstName:   "Grace",
		LastName:    "Hopper",
		UserType:    "business",
		CompanyName: sp("Compilers Inc"),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "owner@example.com" || u.PasswordHash != "" || u.UserType != user.TypeBusiness {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := s.Login(ctx, LoginInput{Email: "OWNER@example.com", Password: "correct-horse"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := s.Login(ctx, LoginInput{Email: "owner@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct-horse"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	s := newTestService(newMemUsers())
	ctx := context.Background()
	in := RegisterInput{Email: "a@example.com", Password: "long-enough", FirstName: "A", LastName: "B", UserType: "individual"}

	if _, err := s.Register(ctx, in); err != nil {
		t.Fatalf("register: %v", err)
	}
	in.Email = "A@EXAMPLE.COM"
	if _, err := s.Register(ctx, in); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestService_Register_DefaultsToIndividual(t *testing.T) {
	s := newTestService(newMemUsers())

	u, err := s.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "long-enough", FirstName: "A", LastName: "B"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.UserType != user.TypeIndividual {
		t.Fatalf("user_type = %q, want individual", u.UserType)
	}

	_, err = s.Register(context.Background(), RegisterInput{Email: "b@example.com", Password: "long-enough", FirstName: "A", LastName: "B", CompanyName: sp("Acme")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("company_name without a business type should fail, got %v", err)
	}
}

func TestService_Register_InvalidInput(t *testing.T) {
	base := RegisterInput{Email: "a@example.com", Password: "long-enough", FirstName: "A", LastName: "B", UserType: "individual"}
	cases := map[string]func(in *RegisterInput){
		"bad email":           func(in *RegisterInput) { in.Email = "not-an-email" },
		"short password":      func(in *RegisterInput) { in.Password = "short" },
		"missing name":        func(in *RegisterInput) { in.LastName = " " },
		"unknown type":        func(in *RegisterInput) { in.UserType = "agency" },
		"business no company": func(in *RegisterInput) { in.UserType = "business" },
		"individual company":  func(in *RegisterInput) { in.CompanyName = sp("Acme") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := newTestService(newMemUsers()).Register(context.Background(), in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
