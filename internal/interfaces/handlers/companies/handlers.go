package companies

import (
	"errors"

	companysvc "github.com/amanuelrf/reliance-mobile/internal/application/companies"
	"github.com/amanuelrf/reliance-mobile/internal/domain"
	"github.com/amanuelrf/reliance-mobile/internal/middleware"
	"github.com/amanuelrf/reliance-mobile/internal/pkg/response"
	"github.com/amanuelrf/reliance-mobile/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *companysvc.Service
}

// summary is the autocomplete row.
type summary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	LegalName *string   `json:"legal_name"`
	MCNumber  *int64    `json:"mc_number"`
	DOTNumber *int64    `json:"dot_number"`
}

func toSummary(c *domain.Company) summary {
	return summary{ID: c.ID, Name: c.Name, LegalName: c.LegalName, MCNumber: c.MCNumber, DOTNumber: c.DOTNumber}
}

// Autocomplete GET /api/v1/companies/autocomplete?query=&limit=10
func (h *Handlers) Autocomplete(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	limit, ok := validation.ParseBoundedInt(c.Query("limit"), companysvc.DefaultLimit, 1, companysvc.MaxLimit)
	if !ok {
		return response.BadRequest(c, "limit must be between 1 and 100")
	}
	ranked, err := h.Service.Search(c.UserContext(), owner, c.Query("query"), limit)
	if err != nil {
		return fail(c, err)
	}
	out := make([]summary, 0, len(ranked))
	for i := range ranked {
		out = append(out, toSummary(&ranked[i].Company))
	}
	return response.Success(c, "Companies retrieved", out, fiber.Map{"count": len(out)})
}

// Create POST /api/v1/companies
func (h *Handlers) Create(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		Name       string  `json:"name"`
		LegalName  *string `json:"legal_name"`
		MCNumber   *int64  `json:"mc_number"`
		DOTNumber  *int64  `json:"dot_number"`
		ExternalID *string `json:"external_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	company, err := h.Service.Create(c.UserContext(), owner, companysvc.CreateInput{
		Name:       body.Name,
		LegalName:  body.LegalName,
		MCNumber:   body.MCNumber,
		DOTNumber:  body.DOTNumber,
		ExternalID: body.ExternalID,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Company created", company, nil)
}

// Get GET /api/v1/companies/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid UUID format for id")
	}
	company, err := h.Service.Get(c.UserContext(), owner, id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Company retrieved", company, nil)
}

// Delete DELETE /api/v1/companies/:id (soft delete)
func (h *Handlers) Delete(c *fiber.Ctx) error {
	owner, ok := middleware.OwnerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid UUID format for id")
	}
	if err := h.Service.Delete(c.UserContext(), owner, id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Company deleted", fiber.Map{"id": id}, nil)
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, companysvc.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, companysvc.ErrDuplicate):
		return response.Conflict(c, "A company with this MC or DOT number already exists")
	case errors.Is(err, companysvc.ErrNotFound):
		return response.NotFound(c, "Company not found")
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("companies request failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
