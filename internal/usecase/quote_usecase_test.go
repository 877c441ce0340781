package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"guardquote/internal/domain/quote"
	"guardquote/internal/domain/user"
	"guardquote/internal/intake"
	ucquote "guardquote/internal/usecase/quote"

	"github.com/google/uuid"
)

type stubUsers struct {
	users map[uuid.UUID]user.User
}

func (s stubUsers) CreateUser(context.Context, user.User) error {
	return errors.New("not implemented")
}

func (s stubUsers) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s stubUsers) GetUserByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (s stubUsers) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }

func (s stubUsers) DeleteUser(context.Context, uuid.UUID) (int64, error) { return 0, nil }

// insertOnlyQuotes keeps inserted quotes so the created record can be read back.
type insertOnlyQuotes struct {
	rows map[uuid.UUID]quote.Quote
}

func (r *insertOnlyQuotes) Insert(_ context.Context, q quote.Quote) (uuid.UUID, error) {
	q.CreatedAt, q.UpdatedAt = time.Now(), time.Now()
	r.rows[q.ID] = q
	return q.ID, nil
}

func (r *insertOnlyQuotes) GetByID(_ context.Context, id uuid.UUID) (quote.Quote, error) {
	q, ok := r.rows[id]
	if !ok {
		return quote.Quote{}, quote.ErrNotFound
	}
	return q, nil
}

func (r *insertOnlyQuotes) ListByOwner(context.Context, uuid.UUID, quote.ListOrder) ([]quote.Quote, error) {
	return nil, nil
}

func (r *insertOnlyQuotes) UpdateByID(context.Context, uuid.UUID, quote.Patch, *quote.Status) (int64, error) {
	return 0, nil
}

func (r *insertOnlyQuotes) DeleteByID(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (r *insertOnlyQuotes) ListExpirable(context.Context, time.Time, int) ([]uuid.UUID, error) {
	return nil, nil
}

func newQuoteUsecase(users map[uuid.UUID]user.User) *Quotes {
	repo := &insertOnlyQuotes{rows: map[uuid.UUID]quote.Quote{}}
	us := stubUsers{users: users}
	return NewQuoteUsecase(ucquote.NewService(repo, us, nil, nil, ucquote.Options{}), us)
}

func TestSubmitIntake_TrackFromAccountType(t *testing.T) {
	id := uuid.New()
	uc := newQuoteUsecase(map[uuid.UUID]user.User{id: {ID: id, UserType: user.TypeIndividual}})

	q, err := uc.SubmitIntake(context.Background(), id, "", intake.Answers{
		intake.KeyCoverageType:     "life",
		intake.KeyCoverageLevel:    "premium",
		intake.KeyEmploymentStatus: "retired",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if q.Type != quote.TypeIndividual || q.Status != quote.StatusPending || q.UserID != id {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.Business != nil || q.Individual == nil || q.Individual.CoverageType != "life" {
		t.Fatalf("unexpected tracks: %+v / %+v", q.Individual, q.Business)
	}
}

func TestSubmitIntake_ExplicitApplicant(t *testing.T) {
	id := uuid.New()
	uc := newQuoteUsecase(map[uuid.UUID]user.User{id: {ID: id, UserType: user.TypeIndividual}})

	_, err := uc.SubmitIntake(context.Background(), id, " Business ", intake.Answers{})
	var ie *quote.IncompleteIntakeError
	if !errors.As(err, &ie) {
		t.Fatalf("expected the business form to be incomplete, got %v", err)
	}
	if len(ie.Missing) == 0 || ie.Missing[0] != intake.KeyCompanySize {
		t.Fatalf("unexpected missing answers: %v", ie.Missing)
	}
}

func TestSubmitIntake_UnknownOwner(t *testing.T) {
	uc := newQuoteUsecase(nil)

	_, err := uc.SubmitIntake(context.Background(), uuid.New(), "", intake.Answers{})
	if !errors.Is(err, quote.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
