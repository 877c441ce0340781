package usecase

import (
	"context"
	"errors"
	"strings"

	"guardquote/internal/domain/quote"
	"guardquote/internal/domain/user"
	"guardquote/internal/intake"
	ucquote "guardquote/internal/usecase/quote"

	"github.com/google/uuid"
)

type QuoteUsecase interface {
	Create(ctx context.Context, ownerID uuid.UUID, req quote.CreateRequest) (quote.Quote, error)
	SubmitIntake(ctx context.Context, ownerID uuid.UUID, applicant string, answers intake.Answers) (quote.Quote, error)
	Get(ctx context.Context, requesterID, id uuid.UUID) (quote.Quote, error)
	List(ctx context.Context, requesterID uuid.UUID, order quote.ListOrder) ([]quote.Quote, error)
	Update(ctx context.Context, requesterID, id uuid.UUID, req quote.UpdateRequest) (quote.Quote, error)
	Delete(ctx context.Context, requesterID, id uuid.UUID) (int64, error)
}

// Quotes puts the intake form in front of the quote service.
type Quotes struct {
	svc   *ucquote.Service
	users user.Repository
}

func NewQuoteUsecase(svc *ucquote.Service, users user.Repository) *Quotes {
	return &Quotes{svc: svc, users: users}
}

func (u *Quotes) Create(ctx context.Context, ownerID uuid.UUID, req quote.CreateRequest) (quote.Quote, error) {
	return u.svc.Create(ctx, ownerID, req)
}

// SubmitIntake builds a creation payload from raw form answers. When applicant
// is empty the owner's account type decides the track.
func (u *Quotes) SubmitIntake(ctx context.Context, ownerID uuid.UUID, applicant string, answers intake.Answers) (quote.Quote, error) {
	if ownerID == uuid.Nil {
		return quote.Quote{}, quote.ErrUnauthorized
	}

	applicant = strings.ToLower(strings.TrimSpace(applicant))
	if applicant == "" {
		owner, err := u.users.GetUserByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return quote.Quote{}, quote.ErrUnauthorized
			}
			return quote.Quote{}, quote.Unavailable("resolve owner", err)
		}
		applicant = string(owner.UserType)
	}

	req, err := intake.Build(quote.Type(applicant), answers)
	if err != nil {
		return quote.Quote{}, err
	}
	return u.svc.Create(ctx, ownerID, req)
}

func (u *Quotes) Get(ctx context.Context, requesterID, id uuid.UUID) (quote.Quote, error) {
	return u.svc.Get(ctx, requesterID, id)
}

func (u *Quotes) List(ctx context.Context, requesterID uuid.UUID, order quote.ListOrder) ([]quote.Quote, error) {
	return u.svc.ListMine(ctx, requesterID, order)
}

func (u *Quotes) Update(ctx context.Context, requesterID, id uuid.UUID, req quote.UpdateRequest) (quote.Quote, error) {
	return u.svc.Update(ctx, requesterID, id, req)
}

func (u *Quotes) Delete(ctx context.Context, requesterID, id uuid.UUID) (int64, error) {
	return u.svc.Delete(ctx, requesterID, id)
}
