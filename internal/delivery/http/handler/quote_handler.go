package handler

import (
	"errors"
	"strings"

	"guardquote/internal/delivery/http/dto"
	"guardquote/internal/delivery/http/middleware"
	"guardquote/internal/domain/quote"
	"guardquote/internal/intake"
	"guardquote/internal/pkg/response"
	"guardquote/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type QuoteHandler struct {
	uc usecase.QuoteUsecase
}

type intakeRequest struct {
	QuoteType string         `json:"quote_type"`
	Answers   intake.Answers `json:"answers"`
}

func NewQuoteHandler(uc usecase.QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

func (h *QuoteHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Create)
	r.Post("/intake", h.SubmitIntake)
	r.Get("/", h.List)
	r.Get("/:id", h.Get)
	r.Patch("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}

func (h *QuoteHandler) Create(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req quote.CreateRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	q, err := h.uc.Create(c.Context(), userID, req)
	if err != nil {
		return mapQuoteError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewQuoteResponse(q))
}

func (h *QuoteHandler) SubmitIntake(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req intakeRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	q, err := h.uc.SubmitIntake(c.Context(), userID, req.QuoteType, req.Answers)
	if err != nil {
		return mapQuoteError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewQuoteResponse(q))
}

func (h *QuoteHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	order := quote.ListOrder(strings.ToLower(strings.TrimSpace(c.Query("order"))))
	switch order {
	case "":
		order = quote.OrderAsc
	case quote.OrderAsc, quote.OrderDesc:
	default:
		return middleware.NewAppError(fiber.StatusBadRequest, "order must be asc or desc", nil, nil)
	}

	items, err := h.uc.List(c.Context(), userID, order)
	if err != nil {
		return mapQuoteError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewQuoteListResponse(items))
}

func (h *QuoteHandler) Get(c fiber.Ctx) error {
	userID, id, err := requesterAndQuoteID(c)
	if err != nil {
		return err
	}

	q, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return mapQuoteError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewQuoteResponse(q))
}

func (h *QuoteHandler) Update(c fiber.Ctx) error {
	userID, id, err := requesterAndQuoteID(c)
	if err != nil {
		return err
	}

	var req quote.UpdateRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	q, err := h.uc.Update(c.Context(), userID, id, req)
	if err != nil {
		return mapQuoteError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewQuoteResponse(q))
}

// Delete answers 200 for a missing id too; deleted tells the two apart.
func (h *QuoteHandler) Delete(c fiber.Ctx) error {
	userID, id, err := requesterAndQuoteID(c)
	if err != nil {
		return err
	}

	n, err := h.uc.Delete(c.Context(), userID, id)
	if err != nil {
		return mapQuoteError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.DeleteResponse{Deleted: n})
}

func requesterAndQuoteID(c fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid quote id", nil, err)
	}
	return userID, id, nil
}

func mapQuoteError(err error) error {
	if err == nil {
		return nil
	}

	var (
		incomplete *quote.IncompleteIntakeError
		invalid    *quote.ValidationError
		immutable  *quote.ImmutableFieldError
		transition *quote.TransitionError
	)
	switch {
	case errors.As(err, &incomplete):
		fields := quote.FieldErrors{}
		for _, k := range incomplete.Missing {
			fields.Add(k, "is required")
		}
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Incomplete intake",
			fiber.Map{"missing": incomplete.Missing, "errors": fields}, err)
	case errors.As(err, &invalid):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Validation failed",
			fiber.Map{"errors": invalid.Errors}, err)
	case errors.As(err, &immutable):
		fields := quote.FieldErrors{}
		fields.Add(immutable.Field, "cannot be changed")
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Field cannot be changed",
			fiber.Map{"errors": fields}, err)
	case errors.As(err, &transition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid status transition",
			fiber.Map{"from": transition.From, "to": transition.To}, err)
	case errors.Is(err, quote.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Quote not found", nil, err)
	case errors.Is(err, quote.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, quote.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, quote.ErrStorageUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
