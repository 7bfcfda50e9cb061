package credit

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/amanuelrf/reliance-mobile/internal/application/companies"
	creditsvc "github.com/amanuelrf/reliance-mobile/internal/application/credit"
	"github.com/amanuelrf/reliance-mobile/internal/domain"
	"github.com/amanuelrf/reliance-mobile/internal/middleware"
	"github.com/amanuelrf/reliance-mobile/internal/pkg/response"
	"github.com/amanuelrf/reliance-mobile/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *creditsvc.Service
	Now     func() time.Time
}

type checkRequest struct {
	MCNumber         json.Number     `json:"mc_number"`
	RequestedAmount  decimal.Decimal `json:"requested_amount"`
	CompanyID        string          `json:"company_id"`
	ExternalID       string          `json:"external_id"`
	IdempotencyToken string          `json:"idempotency_token"`
	Source           string          `json:"source"`
}

type checkView struct {
	ID               uuid.UUID           `json:"id"`
	MCNumber         int64               `json:"mc_number"`
	Status           domain.CreditStatus `json:"status"`
	ApprovedAmount   int64               `json:"approved_amount"`
	RequestedAmount  string              `json:"requested_amount"`
	ExternalID       *string             `json:"external_id"`
	IdempotencyToken string              `json:"idempotency_token"`
	Source           domain.CreditSource `json:"source"`
	RawStatus        string              `json:"raw_status"`
	ExpirationDate   time.Time           `json:"expiration_date"`
	CreatedAt        time.Time           `json:"created_at"`
	Expired          bool                `json:"expired"`
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handlers) view(c *domain.CreditCheck) checkView {
	return checkView{
		ID:               c.ID,
		MCNumber:         c.MCNumber,
		Status:           c.Status,
		ApprovedAmount:   c.ApprovedAmount,
		RequestedAmount:  c.RequestedAmount.StringFixed(2),
		ExternalID:       c.ExternalID,
		IdempotencyToken: c.IdempotencyToken,
		Source:           c.Source,
		RawStatus:        c.RawStatus,
		ExpirationDate:   c.ExpiresAt,
		CreatedAt:        c.CreatedAt,
		Expired:          c.Expired(h.now()),
	}
}

// Check POST /api/v1/credit/check
func (h *Handlers) Check(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body checkRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	in := creditsvc.RunCheckInput{
		OwnerID:          owner,
		RequestedAmount:  body.RequestedAmount,
		ExternalID:       body.ExternalID,
		IdempotencyToken: body.IdempotencyToken,
		Source:           body.Source,
	}
	if body.MCNumber != "" {
		mc, ok := validation.ParseRegistryNumber(body.MCNumber.String())
		if !ok {
			return response.BadRequest(c, "mc_number must be a positive integer")
		}
		in.MCNumber = mc
	}
	if body.CompanyID != "" {
		id, err := uuid.Parse(body.CompanyID)
		if err != nil {
			return response.BadRequest(c, "Invalid UUID format for company_id")
		}
		in.CompanyID = &id
	}
	if in.MCNumber == 0 && in.CompanyID == nil {
		return response.BadRequest(c, "mc_number or company_id is required")
	}
	if !validation.IsValidAmount(body.RequestedAmount) {
		return response.BadRequest(c, "requested_amount must be a positive amount with at most two decimals")
	}

	res, err := h.Service.RunCheck(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	data := h.view(res.Check)
	return response.SuccessCreated(c, res.Message, fiber.Map{
		"check":         data,
		"validity_days": res.Terms.ValidityDays,
	}, fiber.Map{"degraded": res.Degraded})
}

// List GET /api/v1/credit/checks?mc_number=
func (h *Handlers) List(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	mc, err := optionalMC(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	checks, err := h.Service.List(c.UserContext(), owner, mc)
	if err != nil {
		return fail(c, err)
	}
	out := make([]checkView, 0, len(checks))
	for i := range checks {
		out = append(out, h.view(&checks[i]))
	}
	return response.Success(c, "Credit checks retrieved", out, fiber.Map{"count": len(out)})
}

// Latest GET /api/v1/credit/checks/latest?mc_number=
func (h *Handlers) Latest(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	mc, err := optionalMC(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	if mc == nil {
		return response.BadRequest(c, "mc_number is required")
	}
	check, err := h.Service.Latest(c.UserContext(), owner, *mc)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Latest credit check retrieved", h.view(check), nil)
}

// Retract DELETE /api/v1/credit/checks/:id
func (h *Handlers) Retract(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid UUID format for id")
	}
	if err := h.Service.Retract(c.UserContext(), owner, id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Credit check retracted", fiber.Map{"id": id}, nil)
}

// History GET /api/v1/credit/history?months=6&mc_number=
func (h *Handlers) History(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	months, ok := validation.ParseBoundedInt(c.Query("months"), creditsvc.DefaultWindowMonths, 1, creditsvc.MaxWindowMonths)
	if !ok {
		return response.BadRequest(c, "months must be between 1 and 24")
	}
	mc, err := optionalMC(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	rows, err := h.Service.History(c.UserContext(), owner, months, mc)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Credit history retrieved", rows, fiber.Map{"months": months, "count": len(rows)})
}

// Score GET /api/v1/credit/score?months=6
func (h *Handlers) Score(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	months, ok := validation.ParseBoundedInt(c.Query("months"), creditsvc.DefaultWindowMonths, 1, creditsvc.MaxWindowMonths)
	if !ok {
		return response.BadRequest(c, "months must be between 1 and 24")
	}
	trend, err := h.Service.ScoreTrend(c.UserContext(), owner, months)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Credit score trend retrieved", trend, fiber.Map{"months": months})
}

var errBadMC = errors.New("mc_number must be a positive integer")

func optionalMC(c *fiber.Ctx) (*int64, error) {
	raw := c.Query("mc_number")
	if raw == "" {
		return nil, nil
	}
	mc, ok := validation.ParseRegistryNumber(raw)
	if !ok {
		return nil, errBadMC
	}
	return &mc, nil
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, creditsvc.ErrInvalidInput):
		return response.BadRequest(c, strings.TrimPrefix(err.Error(), "credit: "))
	case errors.Is(err, creditsvc.ErrDuplicateIdempotencyToken):
		return response.Conflict(c, "A credit check with this idempotency token already exists")
	case errors.Is(err, creditsvc.ErrNotFound):
		return response.NotFound(c, "Credit check not found")
	case errors.Is(err, companies.ErrNotFound):
		return response.NotFound(c, "Company not found")
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("credit request failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
