package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"guardquote/internal/domain/user"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternal               = errors.New("internal error")
)

const minPasswordLen = 8

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	UserType    string
	CompanyName *string
	Phone       *string
}

type LoginInput struct {
	Email    string
	Password string
}

type Service struct {
	users user.Repository
	cost  int
}

func NewService(users user.Repository) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	u, err := newUser(in)
	if err != nil {
		return user.User{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, u.Email)
	if err != nil {
		return user.User{}, ErrInternal
	}
	if exists {
		return user.User{}, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return user.User{}, ErrInternal
	}
	u.PasswordHash = string(hash)

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, ErrInternal
	}

	created, err := s.users.GetUserByID(ctx, u.ID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(created), nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return sanitizeUser(u), nil
}

func newUser(in RegisterInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return user.User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return user.User{}, fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	if len(strings.TrimSpace(in.Password)) < minPasswordLen {
		return user.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	u := user.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		UserType:  user.Type(strings.ToLower(strings.TrimSpace(in.UserType))),
		Phone:     trimmedOrNil(in.Phone),
	}
	if u.FirstName == "" || u.LastName == "" {
		return user.User{}, fmt.Errorf("%w: first_name and last_name are required", ErrInvalidInput)
	}
	if u.UserType == "" {
		u.UserType = user.TypeIndividual
	}
	if !u.UserType.Valid() {
		return user.User{}, fmt.Errorf("%w: user_type must be individual or business", ErrInvalidInput)
	}

	company := trimmedOrNil(in.CompanyName)
	switch u.UserType {
	case user.TypeBusiness:
		if company == nil {
			return user.User{}, fmt.Errorf("%w: company_name is required for business accounts", ErrInvalidInput)
		}
		u.CompanyName = company
	case user.TypeIndividual:
		if company != nil {
			return user.User{}, fmt.Errorf("%w: company_name is only allowed for business accounts", ErrInvalidInput)
		}
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
