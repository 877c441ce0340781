package user

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeIndividual Type = "individual"
	TypeBusiness   Type = "business"
)

func (t Type) Valid() bool {
	return t == TypeIndividual || t == TypeBusiness
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	UserType     Type
	CompanyName  *string
	Phone        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
